package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"axiapac.com/attendance/datastore/v1/common"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Data       []byte
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewTransport creates a transport with base URL and service key
func NewTransport(baseURL, apiKey string) *Transport {
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (t *Transport) do(ctx context.Context, method, path string, query url.Values, data any, headers map[string]string) (*Response, error) {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.APIKey != "" {
		req.Header.Set("apikey", t.APIKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.APIKey))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, common.NewAPIError(method, path, resp.StatusCode, resdata)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       resdata,
	}, nil
}

// Get sends a GET request
func (t *Transport) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, query, nil, nil)
}

// Post sends a POST request with JSON body
func (t *Transport) Post(ctx context.Context, path string, data any, query url.Values, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, query, data, headers)
}

// Delete sends a DELETE request
func (t *Transport) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, query, nil, map[string]string{"Prefer": "return=minimal"})
}
