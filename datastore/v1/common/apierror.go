package common

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx reply. Code, Message, Details and Hint are filled
// when the server sends a PostgREST error body.
type APIError struct {
	Method     string `json:"-"`
	Path       string `json:"-"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
	Body       string `json:"-"`
}

func NewAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: status, Body: string(body)}
	_ = json.Unmarshal(body, e)
	return e
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request could succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
