package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/transaction"
	"quncipay/internal/utils/response"
	"quncipay/internal/utils/validation"
)

type PaymentHandler struct {
	engine transaction.Service
}

func NewPaymentHandler(engine transaction.Service) *PaymentHandler {
	return &PaymentHandler{engine: engine}
}

// CreatePayment runs the full lifecycle: validation, risk assessment
// and settlement. A held payment is still a 200 with status RISK_HOLD;
// the hold is a lifecycle outcome, not a request failure.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var input struct {
		Amount       int64  `json:"amount" validate:"required,gt=0"`
		Counterparty string `json:"counterparty" validate:"required"`
		IntentKey    string `json:"intent_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if input.IntentKey == "" {
		input.IntentKey = c.Get("Idempotency-Key")
	}

	tx, err := h.engine.CreatePayment(c.Context(), transaction.PaymentRequest{
		Amount:       input.Amount,
		Counterparty: input.Counterparty,
		IntentKey:    input.IntentKey,
	})
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Payment processed", tx)
}

// CashOut pays out the merchant balance through the settlement gateway.
func (h *PaymentHandler) CashOut(c *fiber.Ctx) error {
	var input struct {
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		BankCode    string `json:"bank_code" validate:"required"`
		AccountNo   string `json:"account_no" validate:"required"`
		AccountName string `json:"account_name" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	tx, err := h.engine.CashOut(c.Context(), transaction.CashOutRequest{
		Amount:      input.Amount,
		BankCode:    input.BankCode,
		AccountNo:   input.AccountNo,
		AccountName: input.AccountName,
	})
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Cash out successful", tx)
}

// GetExplanation returns the oracle's narrative for a transaction.
func (h *PaymentHandler) GetExplanation(c *fiber.Ctx) error {
	txID := c.Params("id")
	if txID == "" {
		return response.BadRequest(c, "transaction id is required")
	}

	reason, err := h.engine.Explanation(c.Context(), txID)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "explanation", fiber.Map{"reason": reason})
}
