// Package netx holds low level HTTP helpers that do not belong to the
// authenticated API pipeline, such as direct transfers to object storage.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// UploadError reports a non-2xx answer from a presigned URL.
type UploadError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, e.Body)
}

// UploadToPresignedURL PUTs body to a capability URL. No auth headers are
// attached: the URL itself carries the permission. size may be -1 when unknown.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url string, body io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", contentType)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UploadError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
