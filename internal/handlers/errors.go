package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/listado/internal/lifecycle"
)

// httpError maps lifecycle failures onto HTTP statuses: missing entities to
// 404, illegal transitions to 409, unmet preconditions to 422. Anything else
// is surfaced unmodified for the global error handler.
func httpError(err error) error {
	var nf *lifecycle.NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, nf.Error())
	}

	var it *lifecycle.IllegalTransitionError
	if errors.As(err, &it) {
		return fiber.NewError(fiber.StatusConflict, it.Error())
	}

	var pf *lifecycle.PreconditionFailedError
	if errors.As(err, &pf) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, pf.Error())
	}

	return err
}
