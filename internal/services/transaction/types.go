package transaction

import "time"

// Config holds the engine's tunables. Zero values fall back to the
// package defaults.
type Config struct {
	UserID          string
	Location        string // where the session's payments originate
	TypicalLocation string // the behavioral profile's home location
	AssessTimeout   time.Duration
	GatewayTimeout  time.Duration
	IntentTTL       time.Duration
}

func (c *Config) applyDefaults() {
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.TypicalLocation == "" {
		c.TypicalLocation = c.Location
	}
	if c.AssessTimeout <= 0 {
		c.AssessTimeout = DefaultAssessTimeout
	}
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = DefaultGatewayTimeout
	}
	if c.IntentTTL <= 0 {
		c.IntentTTL = DefaultIntentTTL
	}
}

// PaymentRequest is one user payment intent. IntentKey, when set, makes
// repeat submissions of the same action a rejected duplicate.
type PaymentRequest struct {
	Amount       int64
	Counterparty string
	IntentKey    string
}

// CashOutRequest asks for a merchant payout to a bank account.
type CashOutRequest struct {
	Amount      int64
	BankCode    string
	AccountNo   string
	AccountName string
}
