package types

// Error codes surfaced to the browser shell.
const (
	ErrCodeAuthRequired = "auth_required"
	ErrCodeValidation   = "validation_failed"
	ErrCodeUpstream     = "upstream_error"
	ErrCodeNotFound     = "not_found"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent gateway error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
