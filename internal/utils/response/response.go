package response

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/errors"
	"quncipay/internal/services/settlement"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// Domain maps a service error to the right status code: conflicts are
// 409, missing transactions 404, gateway failures 502 with the
// gateway's own code and message, validation errors 400.
func Domain(c *fiber.Ctx, err error) error {
	if gw, ok := settlement.AsGatewayError(err); ok {
		return Error(c, fiber.StatusBadGateway, gw.Code, gw.Message)
	}
	if errors.IsConflict(err) {
		de := err.(*errors.DomainError)
		return Error(c, fiber.StatusConflict, de.Code, de.Message)
	}
	if err == errors.ErrTransactionNotFound {
		return Error(c, fiber.StatusNotFound, errors.ErrTransactionNotFound.Code, err.Error())
	}
	if de, ok := err.(*errors.DomainError); ok {
		return Error(c, fiber.StatusBadRequest, de.Code, de.Message)
	}
	return ServerError(c, err.Error())
}
