package dto

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse mirrors the body written by the errors package.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// InitStatusResponse reports whether the database has been seeded.
type InitStatusResponse struct {
	Success     bool  `json:"success"`
	Initialized bool  `json:"initialized"`
	Users       int64 `json:"users"`
	Divisions   int64 `json:"divisions"`
	Foremen     int64 `json:"foremen"`
}
