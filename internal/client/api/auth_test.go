package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api/apitest"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

func TestLogin(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, session.New(nil))
	ctx := context.Background()

	resp, err := c.Login(ctx, apitest.DemoUsername, apitest.DemoPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "demo@example.com", resp.User.Email)

	exp, ok := session.TokenExpiry(resp.Token)
	require.True(t, ok)
	assert.False(t, exp.IsZero())

	_, err = c.Login(ctx, apitest.DemoUsername, "wrong")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Invalid credentials", reqErr.Message)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRegister_UnwrapsData(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, session.New(nil))
	ctx := context.Background()

	req := models.RegisterRequest{
		Email:            "new@example.com",
		Firstname:        "New",
		Lastname:         "User",
		Password:         "longenough",
		OrganisationName: "Studio",
	}
	resp, err := c.Register(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, 1, resp.User.Role)

	_, err = c.Register(ctx, req)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusConflict, reqErr.StatusCode)

	_, err = c.Register(ctx, models.RegisterRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, 2, srv.Hits(apitest.RouteRegister))
}

func TestRefresh_UsesCookie(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, session.New(nil))
	ctx := context.Background()

	_, err := c.Refresh(ctx)
	require.Error(t, err)

	_, err = c.Login(ctx, apitest.DemoUsername, apitest.DemoPassword)
	require.NoError(t, err)

	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)

	require.NoError(t, c.Logout(ctx, refreshed.Token))

	_, err = c.Refresh(ctx)
	require.Error(t, err)
}

func TestAuthEnvelope(t *testing.T) {
	t.Run("2xx with status error", func(t *testing.T) {
		srv := apitest.New(t)
		c := newTestClient(t, srv, session.New(nil))

		srv.FailNext(apitest.RouteLogin, http.StatusOK, map[string]any{
			"status":     "error",
			"message":    "Account locked",
			"statusCode": 423,
		})

		_, err := c.Login(context.Background(), apitest.DemoUsername, apitest.DemoPassword)
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 423, reqErr.StatusCode)
		assert.Equal(t, "Account locked", reqErr.Message)
	})

	t.Run("payload status code overrides HTTP status", func(t *testing.T) {
		srv := apitest.New(t)
		c := newTestClient(t, srv, session.New(nil))

		srv.FailNext(apitest.RouteWorkspaces, http.StatusBadRequest, map[string]any{"statusCode": 422})

		_, err := c.Workspaces(context.Background(), srv.IssueToken())
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 422, reqErr.StatusCode)
		assert.Equal(t, "Request failed with status 400", reqErr.Message)
	})

	t.Run("non JSON error body", func(t *testing.T) {
		srv := apitest.New(t)
		c := newTestClient(t, srv, session.New(nil))

		srv.FailNext(apitest.RouteInit, http.StatusInternalServerError, nil)

		_, err := c.UserInit(context.Background())
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
		assert.Equal(t, "Request failed with status 500", reqErr.Message)
	})
}

func TestAccountEndpoints(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, session.New(nil))
	ctx := context.Background()
	token := srv.IssueToken()

	ws, err := c.Workspaces(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []models.Workspace{apitest.DefaultWorkspace}, ws)

	org, err := c.Organisation(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Demo Org", org.Name)

	initialised, err := c.UserInit(ctx)
	require.NoError(t, err)
	assert.True(t, initialised)

	_, err = c.Workspaces(ctx, "garbage")
	assert.Equal(t, KindUnauthorized, Classify(err))
}

func TestDecodeTolerance(t *testing.T) {
	var out map[string]any

	require.NoError(t, authDecoding.decode(response{status: 200, body: nil}, &out))
	assert.Nil(t, out)

	require.NoError(t, authDecoding.decode(response{status: 200, body: []byte("<html>")}, &out))
	assert.Nil(t, out)

	require.NoError(t, authDecoding.decode(response{status: 200, body: []byte(`{"data":{"a":1}}`)}, &out))
	assert.Equal(t, map[string]any{"a": float64(1)}, out)

	var raw map[string]any
	require.NoError(t, editorDecoding.decode(response{status: 200, body: []byte(`{"data":{"a":1}}`)}, &raw))
	assert.Equal(t, map[string]any{"a": float64(1)}, raw)

	err := editorDecoding.decode(response{status: 400, body: []byte(`{"message":"locked","statusCode":423}`)}, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 423, reqErr.StatusCode)
	assert.Equal(t, "locked", reqErr.Message)

	// status:"error" in a 2xx body only fails the auth pipeline.
	require.NoError(t, editorDecoding.decode(response{status: 200, body: []byte(`{"status":"error","message":"x"}`)}, &raw))
}

func TestEditorEndpointsUnwrapData(t *testing.T) {
	var gotWorkspace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWorkspace = r.Header.Get(common.WorkspaceHeaderName)
		if r.URL.Path != "/files/sign" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"url":"https://signed.example/x"}}`)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess := session.New(nil)
	sess.SetToken("token")
	require.NoError(t, sess.SetWorkspaceID(ctx, "ws-1"))

	c, err := New(srv.URL, sess)
	require.NoError(t, err)

	signed, err := c.SignFileByKey(ctx, "assets/x.png", false)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/x", signed.URL)
	assert.Equal(t, "ws-1", gotWorkspace)
}
