package common

import (
	"encoding/json"
	"net/http"
	"strings"

	"axiapac.com/attendance/web/middlewares"
	"github.com/aws/aws-lambda-go/events"
)

// IsProxyRequest reports whether a raw event came through API Gateway.
func IsProxyRequest(raw []byte) (events.APIGatewayProxyRequest, bool) {
	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, false
	}
	return req, req.HTTPMethod != "" && (req.Path != "" || req.Resource != "")
}

// NewProxyResponse renders body as JSON with the CORS headers every sync
// endpoint sends.
func NewProxyResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(payload),
	}
}

// OptionsResponse answers a preflight request.
func OptionsResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    corsHeaders(),
		Body:       "ok",
	}
}

func corsHeaders() map[string]string {
	headers := make(map[string]string, len(middlewares.CorsHeaders)+1)
	for k, v := range middlewares.CorsHeaders {
		headers[k] = v
	}
	return headers
}

// Header looks up a request header ignoring case, since API Gateway passes
// them through as the client sent them.
func Header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
