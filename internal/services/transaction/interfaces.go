package transaction

import (
	"context"

	"quncipay/internal/models"
)

// OfflineQueuer accepts payments while the device is offline. The sync
// engine implements it; the engine delegates instead of assessing.
type OfflineQueuer interface {
	QueuePayment(ctx context.Context, amount int64, counterparty string) (*models.Transaction, error)
}

// Service is the transaction lifecycle engine: it owns every state
// transition of a transaction and is the only writer of balances.
type Service interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*models.Transaction, error)
	TopUp(ctx context.Context, amount int64) (*models.Transaction, error)
	TopUpWithCard(ctx context.Context, token string, amount int64) (*models.Transaction, error)
	CreateTopUpLink(ctx context.Context, amount int64) (string, error)
	TransferToOffline(ctx context.Context, amount int64) error
	TransferToOnline(ctx context.Context, amount int64) error
	CashOut(ctx context.Context, req CashOutRequest) (*models.Transaction, error)
	OverrideApprove(ctx context.Context, txID string) (*models.Transaction, error)
	OverrideReject(ctx context.Context, txID string) (*models.Transaction, error)
	SetWalletLock(ctx context.Context, locked bool) error
	Explanation(ctx context.Context, txID string) (string, error)
}
