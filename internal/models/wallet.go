package models

// NetworkMode is the simulated device connectivity state.
type NetworkMode string

const (
	NetworkOnline  NetworkMode = "ONLINE"
	NetworkOffline NetworkMode = "OFFLINE"
)

// Balances groups the consumer wallet pools. Pending tracks funds
// earmarked by offline payments that have not been resolved yet.
type Balances struct {
	Online  int64 `json:"online"`
	Offline int64 `json:"offline"`
	Pending int64 `json:"pending"`
}

// WalletSnapshot is the read-only view handed to the UI.
type WalletSnapshot struct {
	User            Balances      `json:"user"`
	MerchantBalance int64         `json:"merchant_balance"`
	Points          int64         `json:"points"`
	WalletLocked    bool          `json:"wallet_locked"`
	Network         NetworkMode   `json:"network"`
	Transactions    []Transaction `json:"transactions"`
}
