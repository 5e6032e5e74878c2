package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/ledger"
	"quncipay/internal/services/transaction"
	"quncipay/internal/utils/response"
	"quncipay/internal/utils/validation"
)

type WalletHandler struct {
	store  *ledger.Store
	engine transaction.Service
}

func NewWalletHandler(store *ledger.Store, engine transaction.Service) *WalletHandler {
	return &WalletHandler{store: store, engine: engine}
}

// GetWallet returns the full wallet view: balances, points, lock state,
// network mode and the transaction list.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	return response.Success(c, "wallet", snap.Snapshot())
}

func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	var input struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	tx, err := h.engine.TopUp(c.Context(), input.Amount)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Top up successful", tx)
}

func (h *WalletHandler) TopUpWithCard(c *fiber.Ctx) error {
	var input struct {
		Token  string `json:"token" validate:"required"`
		Amount int64  `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	tx, err := h.engine.TopUpWithCard(c.Context(), input.Token, input.Amount)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Top up successful", tx)
}

// CreateTopUpLink returns a hosted cashier URL instead of moving funds.
func (h *WalletHandler) CreateTopUpLink(c *fiber.Ctx) error {
	var input struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	url, err := h.engine.CreateTopUpLink(c.Context(), input.Amount)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Payment link created", fiber.Map{"url": url})
}

func (h *WalletHandler) TransferToOffline(c *fiber.Ctx) error {
	return h.transfer(c, h.engine.TransferToOffline, "Transferred to offline wallet")
}

func (h *WalletHandler) TransferToOnline(c *fiber.Ctx) error {
	return h.transfer(c, h.engine.TransferToOnline, "Transferred to online wallet")
}

func (h *WalletHandler) transfer(c *fiber.Ctx, move func(ctx context.Context, amount int64) error, message string) error {
	var input struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := move(c.Context(), input.Amount); err != nil {
		return response.Domain(c, err)
	}
	snap := h.store.Snapshot()
	return response.Success(c, message, snap.Snapshot())
}
