package models

// BackendUser is the authenticated account as returned by the backend.
type BackendUser struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Role      int    `json:"role,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Workspace is a tenant boundary. Every editor call is scoped to one.
type Workspace struct {
	ID             string `json:"id"`
	OrganisationID string `json:"organisation_id"`
	Name           string `json:"name"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type Organisation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Firstname        string `json:"firstname" validate:"required"`
	Lastname         string `json:"lastname" validate:"required"`
	Password         string `json:"password" validate:"required,min=8"`
	Role             int    `json:"role"`
	OrganisationName string `json:"organisation_name,omitempty"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    BackendUser `json:"user"`
}
