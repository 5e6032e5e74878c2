package risk

import (
	"time"

	"quncipay/internal/models"
)

// DefaultAvgTransaction seeds the rolling average before the session
// has any completed payments.
const DefaultAvgTransaction int64 = 150000

// NewContext assembles the oracle request for one payment, deriving the
// behavioral profile from the session's transaction history (newest
// first, as kept by the ledger). location is where the payment happens;
// typicalLocation is the profile's home location.
func NewContext(userID string, amount int64, merchant, location, typicalLocation string, at time.Time, history []models.Transaction) Context {
	var (
		sum      int64
		count    int64
		lastSeen time.Time
		known    bool
	)
	for _, tx := range history {
		if tx.CreatedAt.After(lastSeen) {
			lastSeen = tx.CreatedAt
		}
		if tx.Counterparty != "" && tx.Counterparty == merchant {
			known = true
		}
		if tx.Kind == models.TransactionKindPayment && tx.Status == models.StatusCompleted {
			sum += tx.Amount
			count++
		}
	}

	avg := DefaultAvgTransaction
	if count > 0 {
		avg = sum / count
	}
	if lastSeen.IsZero() {
		lastSeen = at
	}

	return Context{
		UserID:    userID,
		Amount:    amount,
		Merchant:  merchant,
		Timestamp: at.Format(time.RFC3339),
		Location:  location,
		UserHistory: Profile{
			AvgTransaction:  avg,
			LastLogin:       lastSeen.Format(time.RFC3339),
			TypicalLocation: typicalLocation,
		},
		NewCounterparty: merchant != "" && !known,
	}
}
