package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/transaction"
	"quncipay/internal/utils/response"
)

// AdminHandler exposes the operator override surface: resolving risk
// holds and the manual wallet lock.
type AdminHandler struct {
	engine transaction.Service
}

func NewAdminHandler(engine transaction.Service) *AdminHandler {
	return &AdminHandler{engine: engine}
}

func (h *AdminHandler) OverrideApprove(c *fiber.Ctx) error {
	txID := c.Params("id")
	if txID == "" {
		return response.BadRequest(c, "transaction id is required")
	}

	tx, err := h.engine.OverrideApprove(c.Context(), txID)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Transaction approved", tx)
}

func (h *AdminHandler) OverrideReject(c *fiber.Ctx) error {
	txID := c.Params("id")
	if txID == "" {
		return response.BadRequest(c, "transaction id is required")
	}

	tx, err := h.engine.OverrideReject(c.Context(), txID)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Transaction rejected", tx)
}

func (h *AdminHandler) SetWalletLock(c *fiber.Ctx) error {
	var input struct {
		Locked bool `json:"locked"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.engine.SetWalletLock(c.Context(), input.Locked); err != nil {
		return response.Domain(c, err)
	}

	message := "Wallet unlocked"
	if input.Locked {
		message = "Wallet locked"
	}
	return response.Success(c, message, fiber.Map{"locked": input.Locked})
}
