package scriptgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 2048

// postJSON sends body as JSON and decodes a 2xx response into dest.
// Failures are returned as *GenerationError.
func postJSON(ctx context.Context, httpClient *http.Client, backend Backend, url string, headers map[string]string, body, dest interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &GenerationError{Backend: backend, Reason: ReasonRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &GenerationError{Backend: backend, Reason: ReasonRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return transportError(backend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &GenerationError{
			Backend:    backend,
			Reason:     ReasonNonSuccessStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if ctx.Err() != nil {
			return transportError(backend, ctx.Err())
		}
		return &GenerationError{Backend: backend, Reason: ReasonMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
