package ledger

import (
	"quncipay/internal/models"
)

// Pool identifies a balance bucket inside the session ledger.
type Pool string

const (
	PoolOnline   Pool = "online"
	PoolOffline  Pool = "offline"
	PoolPending  Pool = "pending"
	PoolMerchant Pool = "merchant"
)

// State is one consistent view of the session ledger. Mutating methods
// are only meant to run inside Store.Update.
type State struct {
	User            models.Balances
	MerchantBalance int64
	Points          int64
	WalletLocked    bool
	// LockCauses holds the IDs of risk-held transactions that triggered
	// the current lock. A manual admin lock has no causes.
	LockCauses   map[string]struct{}
	Network      models.NetworkMode
	Transactions []models.Transaction // newest first
}

// Seed are the opening balances for a demo session.
type Seed struct {
	OnlineBalance   int64
	OfflineBalance  int64
	MerchantBalance int64
	Points          int64
}
