// Package api is the HTTP client of the vibecut backend.
//
// Two pipelines share one transport. The auth pipeline (login, register,
// refresh, logout, workspaces) sends an optional bearer token and relies on
// the refresh cookie kept in the client's cookie jar. The editor pipeline
// (projects and files) additionally resolves the workspace through the
// Session, sends it as x-workspace-id, and on a 401 refreshes the access
// token once and retries the call once.
//
// # Errors
//
// Failures are reported with a closed set of error values:
//
//   - *ConflictError:  409 VERSION_CONFLICT on a project write
//   - *RequestError:   any other non-2xx (StatusCode, Message); wraps
//     ErrSessionExpired, ErrNoWorkspace or common.ErrorUnauthorized where
//     applicable
//   - transport errors from net/http, wrapped
//
// Classify maps any error to a Kind for exhaustive handling.
//
// Response bodies may be the payload itself or {"data": payload}; both are
// accepted on every endpoint, and a statusCode in an error body overrides
// the HTTP status. On auth endpoints a 2xx body of the form
// {"status": "error", ...} is also a failure.
package api
