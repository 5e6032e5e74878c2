package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/ledger"
	"quncipay/internal/utils/response"
)

type TransactionHandler struct {
	store *ledger.Store
}

func NewTransactionHandler(store *ledger.Store) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// GetTransactions lists the session ledger, newest first. An optional
// status query filters (e.g. ?status=RISK_HOLD for the admin console).
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	status := c.Query("status")
	if status == "" {
		return response.Success(c, "transactions", snap.Transactions)
	}

	filtered := snap.Transactions[:0:0]
	for _, tx := range snap.Transactions {
		if string(tx.Status) == status {
			filtered = append(filtered, tx)
		}
	}
	return response.Success(c, "transactions", filtered)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	tx, ok := snap.FindTransaction(c.Params("id"))
	if !ok {
		return response.Error(c, fiber.StatusNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	}
	return response.Success(c, "transaction", tx)
}
