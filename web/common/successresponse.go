package common

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewSuccessResponse(message string, details interface{}) *SuccessResponse {
	return &SuccessResponse{
		Success: true,
		Message: message,
		Details: details,
	}
}
