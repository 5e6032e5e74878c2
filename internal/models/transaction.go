package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transaction kinds
const (
	TransactionKindPayment = "PAYMENT"
	TransactionKindTopup   = "TOPUP"
	TransactionKindCashout = "CASHOUT"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	StatusCompleted   TransactionStatus = "COMPLETED"
	StatusPendingSync TransactionStatus = "PENDING_SYNC"
	StatusRiskHold    TransactionStatus = "RISK_HOLD"
	StatusFailed      TransactionStatus = "FAILED"
)

// Channel records where a payment was initiated. Offline payments are
// debited from the vault at creation; online payments only on completion.
type Channel string

const (
	ChannelOnline  Channel = "ONLINE"
	ChannelOffline Channel = "OFFLINE"
)

// RiskDecision is the oracle's verdict for a transaction.
type RiskDecision string

const (
	DecisionApprove RiskDecision = "APPROVE"
	DecisionHold    RiskDecision = "HOLD"
	DecisionReject  RiskDecision = "REJECT"
)

// RiskAssessment is attached to a transaction once it has been scored.
type RiskAssessment struct {
	Score    int          `json:"risk_score"`
	Decision RiskDecision `json:"decision"`
	Reason   string       `json:"reason,omitempty"`
	Flags    []string     `json:"flags,omitempty"`
}

// Transaction is the session ledger record for a single money movement.
// Amounts are in minor currency units (whole rupiah).
type Transaction struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"`
	Amount       int64             `json:"amount"`
	Status       TransactionStatus `json:"status"`
	Channel      Channel           `json:"channel"`
	Counterparty string            `json:"counterparty,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Risk         *RiskAssessment   `json:"risk,omitempty"`
}

// NewTransactionID builds an ID that embeds the creation time, so IDs
// from the same session sort roughly by age.
func NewTransactionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TX-%d-%s", now.UnixMilli(), suffix)
}

// Resolved reports whether the transaction has reached a terminal state.
func (t *Transaction) Resolved() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
