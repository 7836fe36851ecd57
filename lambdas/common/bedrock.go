package common

import (
	"encoding/json"
	"strings"
)

type BedrockParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// BedrockEvent is the action group invocation an agent sends. Function names
// the operation ("inbound" or "outbound").
type BedrockEvent struct {
	ActionGroup string             `json:"actionGroup"`
	ApiPath     string             `json:"apiPath"`
	HTTPMethod  string             `json:"httpMethod"`
	Function    string             `json:"function"`
	Parameters  []BedrockParameter `json:"parameters"`
}

type BedrockFunctionResponse struct {
	ResponseBody interface{} `json:"responseBody"`
}

type BedrockResponseContainer struct {
	ActionGroup      string                  `json:"actionGroup"`
	Function         string                  `json:"function"`
	FunctionResponse BedrockFunctionResponse `json:"functionResponse"`
}

type BedrockOutput struct {
	MessageVersion string                   `json:"messageVersion"`
	Response       BedrockResponseContainer `json:"response"`
}

// ParseBedrockEvent reports whether raw is an agent invocation.
func ParseBedrockEvent(raw []byte) (BedrockEvent, bool) {
	var e BedrockEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, false
	}
	return e, e.ActionGroup != ""
}

// GetParameter returns the first parameter whose name matches one of names,
// ignoring case.
func (e *BedrockEvent) GetParameter(names ...string) string {
	for _, name := range names {
		for _, p := range e.Parameters {
			if strings.EqualFold(p.Name, name) {
				return p.Value
			}
		}
	}
	return ""
}

func (e *BedrockEvent) GetBool(name string) bool {
	return strings.EqualFold(strings.TrimSpace(e.GetParameter(name)), "true")
}

func NewBedrockResponse(actionGroup, function string, results interface{}) BedrockOutput {
	resBody, _ := json.Marshal(results)
	return BedrockOutput{
		MessageVersion: "1.0",
		Response: BedrockResponseContainer{
			ActionGroup: actionGroup,
			Function:    function,
			FunctionResponse: BedrockFunctionResponse{
				ResponseBody: map[string]interface{}{
					"TEXT": map[string]string{
						"body": string(resBody),
					},
				},
			},
		},
	}
}
