package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// envelope is the body parsed as a JSON object; nil when the body is empty,
// not JSON, or not an object.
func (r response) envelope() map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.body, &obj); err != nil {
		return nil
	}
	return obj
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func numberField(obj map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// decoding holds the rules that differ between the auth and editor pipelines.
// Both unwrap {data} and honour a statusCode in the error body.
type decoding struct {
	// statusErrors treats a 2xx body with status "error" as a failure.
	statusErrors bool
	// conflicts turns 409 VERSION_CONFLICT into a *ConflictError.
	conflicts bool
	fallback  string
}

var (
	authDecoding   = decoding{statusErrors: true, fallback: "Request failed with status %d"}
	editorDecoding = decoding{conflicts: true, fallback: "Editor API request failed (%d)"}
)

func (d decoding) requestError(status int, obj map[string]json.RawMessage) *RequestError {
	e := &RequestError{StatusCode: status, Message: fmt.Sprintf(d.fallback, status)}
	if msg, ok := stringField(obj, "message"); ok {
		e.Message = msg
	}
	if code, ok := numberField(obj, "statusCode"); ok && code > 0 {
		e.StatusCode = int(code)
	}
	if e.StatusCode == http.StatusUnauthorized {
		e.Err = common.ErrorUnauthorized
	}
	return e
}

func conflictError(obj map[string]json.RawMessage) *ConflictError {
	e := &ConflictError{Message: "Project has a newer version on server"}
	if msg, ok := stringField(obj, "message"); ok {
		e.Message = msg
	}
	if v, ok := numberField(obj, "serverVersion"); ok {
		e.ServerVersion = int(v)
	}
	if at, ok := stringField(obj, "serverUpdatedAt"); ok {
		e.ServerUpdatedAt = at
	}
	return e
}

// decode classifies r and, on success, unmarshals the payload into out.
// Empty and non-JSON success bodies decode as null.
func (d decoding) decode(r response, out any) error {
	obj := r.envelope()

	if !r.ok() {
		if d.conflicts && r.status == http.StatusConflict {
			if kind, _ := stringField(obj, "error"); kind == "VERSION_CONFLICT" {
				return conflictError(obj)
			}
		}
		return d.requestError(r.status, obj)
	}

	if d.statusErrors {
		if status, _ := stringField(obj, "status"); status == "error" {
			return d.requestError(r.status, obj)
		}
	}

	if out == nil || !json.Valid(r.body) {
		return nil
	}

	payload := r.body
	if obj != nil {
		if data, ok := obj["data"]; ok {
			payload = data
		}
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
