package api

import "github.com/tooldesk/tooldesk/backend/errs"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	appHandler         appHandler
	categoryHandler    categoryHandler
	subcategoryHandler subcategoryHandler
	requisitionHandler requisitionHandler
	analyticsHandler   analyticsHandler
	transferHandler    transferHandler
	fileHandler        fileHandler
	newsHandler        newsHandler
	healthHandler      healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Message string            `json:"message" example:"validation failed: invalid url"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"url"`
	Errors  []errs.FieldError `json:"errors,omitempty"`
}

// MessageResponse confirms an operation that has no record to return
type MessageResponse struct {
	Message string `json:"message" example:"App deleted successfully"`
}
