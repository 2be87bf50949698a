package handlers

// Messages shared by handlers and middleware
const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Authentication required"
	ErrSelectChild         = "Select a child first"
	ErrInternalServerError = "Internal server error"
)
