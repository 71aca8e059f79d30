package dto

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	FieldInvalidJSON   = "FIELD_INVALID_JSON"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	Unauthorized = "UNAUTHORIZED"
	Forbidden    = "FORBIDDEN"

	EventNotFound         = "EVENT_NOT_FOUND"
	EventFull             = "EVENT_FULL"
	EventHasDependents    = "EVENT_HAS_DEPENDENTS"
	SlugDuplicate         = "SLUG_DUPLICATE"
	EmailDuplicate        = "EMAIL_DUPLICATE"
	AttendeeNotFound      = "ATTENDEE_NOT_FOUND"
	AlreadyCheckedIn      = "ALREADY_CHECKED_IN"
	AdministratorNotFound = "ADMINISTRATOR_NOT_FOUND"
	PresenterNotFound     = "PRESENTER_NOT_FOUND"
	AgendaItemNotFound    = "AGENDA_ITEM_NOT_FOUND"
	MessageNotFound       = "MESSAGE_NOT_FOUND"
	FileNotFound          = "FILE_NOT_FOUND"
	ImportNotFound        = "IMPORT_NOT_FOUND"
	FeaturedNotFound      = "FEATURED_NOT_FOUND"
	TokenInvalid          = "TOKEN_INVALID"
	Duplicate             = "DUPLICATE"
)

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func ErrorResponse(c *ginext.Context, status int, code, desc string) {
	c.AbortWithStatusJSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusBadRequest, code, desc)
}

func NotFoundError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusNotFound, code, desc)
}

func ConflictError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusConflict, code, desc)
}

func UnauthorizedError(c *ginext.Context, desc string) {
	ErrorResponse(c, http.StatusUnauthorized, Unauthorized, desc)
}

func ForbiddenError(c *ginext.Context) {
	ErrorResponse(c, http.StatusForbidden, Forbidden, "Not allowed")
}

func InternalServerError(c *ginext.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ServiceUnavailable, InternalError)
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldIncorrect, "Field '"+fieldName+"' is incorrect")
}

// FieldInvalidJSONError reports a form field whose text could not be read as JSON.
// reason is the codec message, which already starts with "Invalid JSON: ".
func FieldInvalidJSONError(c *ginext.Context, fieldName, reason string) {
	BadResponseError(c, FieldInvalidJSON, "Field '"+fieldName+"': "+reason)
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}
