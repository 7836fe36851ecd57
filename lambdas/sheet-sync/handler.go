package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/attendance/web/handlers"
	"axiapac.com/attendance/lambdas/common"
	webcommon "axiapac.com/attendance/web/common"
	"axiapac.com/attendance/web/middlewares"
	"github.com/aws/aws-lambda-go/events"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// SyncEvent is the payload of a direct or scheduled invocation. An empty
// direction runs the inbound sync.
type SyncEvent struct {
	Direction string `json:"direction"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reimport  bool   `json:"reimport"`
}

type Handler struct {
	Inbound  handlers.InboundSyncer
	Outbound handlers.OutboundExporter
	// JWTSecret, when set, is required on API Gateway requests.
	JWTSecret []byte
}

// HandleEvent dispatches a raw Lambda event. Agent invocations, API Gateway
// requests, EventBridge schedules and plain SyncEvent payloads are accepted.
func (h *Handler) HandleEvent(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	fmt.Printf("[INFO] Event: %s\n", string(raw))

	if bedrockEvent, ok := common.ParseBedrockEvent(raw); ok {
		fmt.Printf("[INFO] Identified as Bedrock Event: %s\n", bedrockEvent.ActionGroup)
		return h.handleBedrock(ctx, bedrockEvent), nil
	}

	if req, ok := common.IsProxyRequest(raw); ok {
		fmt.Printf("[INFO] Identified as API Gateway request: %s %s\n", req.HTTPMethod, req.Path)
		return h.handleProxy(ctx, req), nil
	}

	var syncEvent SyncEvent
	var scheduled events.CloudWatchEvent
	if err := json.Unmarshal(raw, &scheduled); err == nil && scheduled.DetailType != "" {
		fmt.Printf("[INFO] Identified as Scheduled Event: %s\n", scheduled.DetailType)
		if len(scheduled.Detail) > 0 {
			_ = json.Unmarshal(scheduled.Detail, &syncEvent)
		}
	} else {
		fmt.Printf("[INFO] Identified as Standard Sync Event\n")
		if err := json.Unmarshal(raw, &syncEvent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sync event: %w", err)
		}
	}

	message, details, err := h.run(ctx, syncEvent)
	_, body := handlers.Outcome(message, details, err)
	if err != nil && core.CodeOf(err) != core.CodePartial {
		return body, err
	}
	return body, nil
}

// FailedInit answers an event when the app could not be built. API Gateway
// and agent callers get the usual error envelope; other invocations fail.
func FailedInit(raw json.RawMessage, err error) (interface{}, error) {
	if bedrockEvent, ok := common.ParseBedrockEvent(raw); ok {
		_, body := handlers.Outcome("", nil, err)
		return common.NewBedrockResponse(bedrockEvent.ActionGroup, bedrockEvent.Function, body), nil
	}
	if req, ok := common.IsProxyRequest(raw); ok {
		if req.HTTPMethod == http.MethodOptions {
			return common.OptionsResponse(), nil
		}
		return common.NewProxyResponse(handlers.Outcome("", nil, err)), nil
	}
	return nil, err
}

func (h *Handler) run(ctx context.Context, e SyncEvent) (string, interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(e.Direction)) {
	case "", DirectionInbound:
		sync := h.Inbound.Sync
		if e.Reimport {
			sync = h.Inbound.Reimport
		}
		result, err := sync(ctx)
		if result == nil {
			return "", nil, err
		}
		return result.Message(), result, err
	case DirectionOutbound:
		result, err := h.Outbound.Export(ctx, e.StartDate, e.EndDate)
		if result == nil {
			return "", nil, err
		}
		return result.Message(), result, err
	default:
		return "", nil, core.NewSyncError(core.CodeValidation, "unknown direction %q", e.Direction)
	}
}

func (h *Handler) handleBedrock(ctx context.Context, e common.BedrockEvent) common.BedrockOutput {
	direction := e.Function
	if direction == "" {
		direction = lastSegment(e.ApiPath)
	}
	syncEvent := SyncEvent{
		Direction: direction,
		StartDate: e.GetParameter("startDate", "start_date", "start"),
		EndDate:   e.GetParameter("endDate", "end_date", "end"),
		Reimport:  e.GetBool("reimport"),
	}

	message, details, err := h.run(ctx, syncEvent)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
	}
	_, body := handlers.Outcome(message, details, err)
	return common.NewBedrockResponse(e.ActionGroup, e.Function, body)
}

func (h *Handler) handleProxy(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod == http.MethodOptions {
		return common.OptionsResponse()
	}

	path := req.Path
	if path == "" {
		path = req.Resource
	}
	direction := lastSegment(path)
	if req.HTTPMethod != http.MethodPost || (direction != DirectionInbound && direction != DirectionOutbound) {
		return common.NewProxyResponse(http.StatusNotFound,
			webcommon.NewCodedErrorResponse(string(core.CodeValidation), fmt.Sprintf("no route for %s %s", req.HTTPMethod, path)))
	}

	authenticated := false
	if len(h.JWTSecret) > 0 {
		token, ok := middlewares.BearerToken(common.Header(req, "Authorization"))
		if !ok {
			return common.NewProxyResponse(http.StatusUnauthorized, webcommon.NewErrorResponse("missing bearer token"))
		}
		if _, err := middlewares.VerifyToken(token, h.JWTSecret); err != nil {
			return common.NewProxyResponse(http.StatusUnauthorized, webcommon.NewErrorResponse("invalid or expired token"))
		}
		authenticated = true
	}

	syncEvent := SyncEvent{Direction: direction}
	if direction == DirectionInbound && req.QueryStringParameters["reimport"] == "true" {
		if !authenticated {
			return common.NewProxyResponse(http.StatusForbidden,
				webcommon.NewCodedErrorResponse(string(core.CodeValidation), "reimport requires an authenticated request"))
		}
		syncEvent.Reimport = true
	}
	if direction == DirectionOutbound && strings.TrimSpace(req.Body) != "" {
		payload := []byte(req.Body)
		if req.IsBase64Encoded {
			if decoded, err := base64.StdEncoding.DecodeString(req.Body); err == nil {
				payload = decoded
			}
		}
		var body handlers.OutboundRequest
		if err := json.Unmarshal(payload, &body); err != nil {
			fmt.Printf("[WARN] Ignoring outbound request body: %v\n", err)
		} else {
			syncEvent.StartDate, syncEvent.EndDate = body.Range()
		}
	}

	message, details, err := h.run(ctx, syncEvent)
	return common.NewProxyResponse(handlers.Outcome(message, details, err))
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.ToLower(path)
}
