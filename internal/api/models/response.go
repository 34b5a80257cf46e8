package models

import "time"

// BaseResponse represents the base API response structure
type BaseResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp" example:"1640995200"`
	RequestID string      `json:"request_id,omitempty" example:"3f1c2a8e-6d1b-4c47-9d7e-2b1f0b6a9c11"`
}

// ErrorInfo represents error information
type ErrorInfo struct {
	Code    string `json:"code" example:"UNAUTHORIZED"`
	Message string `json:"message" example:"Authentication required"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse builds the error envelope for an APIError
func NewErrorResponse(err *APIError, requestID string) BaseResponse {
	return BaseResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
		Timestamp: time.Now().Unix(),
		RequestID: requestID,
	}
}

// LoginResponse is returned by the login endpoint
type LoginResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsImtpZCI6ImRlZmF1bHQiLCJ0eXAiOiJKV1QifQ..."`
}

// IdentityResponse describes the authenticated caller
type IdentityResponse struct {
	Username    string   `json:"username" example:"alice"`
	Authorities []string `json:"authorities"`
	ClientIP    string   `json:"client_ip,omitempty" example:"192.168.1.100"`
	RequestID   string   `json:"request_id,omitempty"`
}

// HealthCheckResponse represents health check response
type HealthCheckResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp int64  `json:"timestamp" example:"1640995200"`
	Version   string `json:"version" example:"1.0.0"`
	Uptime    int64  `json:"uptime" example:"86400"`
}
