package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
)

// humaError maps a coded error onto the matching HTTP status.
func humaError(err error) error {
	if err == nil {
		return nil
	}
	msg := errors.GetMessage(err)
	switch errors.GetCode(err) {
	case errors.ErrInvalidInput, errors.ErrIncompleteSelection:
		return huma.Error400BadRequest(msg, err)
	case errors.ErrNotFound:
		return huma.Error404NotFound(msg, err)
	case errors.ErrAlreadyExists:
		return huma.Error409Conflict(msg, err)
	case errors.ErrStorage:
		return huma.Error503ServiceUnavailable(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}
