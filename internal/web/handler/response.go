package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
)

var (
	// ErrInvalidID is returned when a path id is not a positive integer.
	ErrInvalidID = apperr.Invalid("invalid id", nil)

	// ErrInvalidBody is returned when the request body is not valid JSON for the endpoint.
	ErrInvalidBody = apperr.Invalid("invalid request body", nil)
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error      string            `json:"error"`
	InvalidIDs []uint64          `json:"invalid_ids,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Error answers err with the status of its kind. Errors without a kind are logged
// and answered with a generic 500.
func Error(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("request failed")

		return c.Status(status).JSON(ErrorResponse{Error: "internal server error"})
	}

	body := ErrorResponse{Error: err.Error()}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.InvalidIDs) > 0 {
		body.Error = appErr.Message
		body.InvalidIDs = appErr.InvalidIDs
	}

	return c.Status(status).JSON(body)
}

// ParseID reads the positive integer path parameter name.
func ParseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// Bind parses the JSON body into dst and validates it. On failure the 400 response
// has already been written and the returned error must be returned by the handler.
func Bind(c *fiber.Ctx, v *validator.Validate, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, Error(c, ErrInvalidBody)
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, Error(c, ErrInvalidBody)
		}

		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}

		return false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
	}

	return true, nil
}

// Message is the JSON body of a successful request that only carries a message.
type Message struct {
	Message string `json:"message"`
}
