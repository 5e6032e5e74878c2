package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quncipay/internal/models"
)

func TestRuleScorer(t *testing.T) {
	base := Context{
		UserID:    "usr_test",
		Amount:    100000,
		Merchant:  "Warung Sederhana",
		Timestamp: "2025-05-01T14:00:00Z",
		Location:  "Jakarta, ID",
		UserHistory: Profile{
			AvgTransaction:  150000,
			TypicalLocation: "Jakarta, ID",
		},
	}

	tests := []struct {
		name         string
		mutate       func(tc *Context)
		wantScore    int
		wantDecision models.RiskDecision
		wantFlags    []string
	}{
		{
			name:         "no signals",
			mutate:       func(tc *Context) {},
			wantScore:    0,
			wantDecision: models.DecisionApprove,
		},
		{
			name:         "high value alone approves",
			mutate:       func(tc *Context) { tc.Amount = 4500000 },
			wantScore:    40,
			wantDecision: models.DecisionApprove,
			wantFlags:    []string{"HIGH_VALUE"},
		},
		{
			name: "high value at an odd hour holds",
			mutate: func(tc *Context) {
				tc.Amount = 4500000
				tc.Timestamp = "2025-05-01T03:12:00Z"
			},
			wantScore:    60,
			wantDecision: models.DecisionHold,
			wantFlags:    []string{"HIGH_VALUE", "UNUSUAL_TIME"},
		},
		{
			name: "every signal rejects",
			mutate: func(tc *Context) {
				tc.Amount = 4500000
				tc.Timestamp = "2025-05-01T03:12:00Z"
				tc.Location = "Lagos, NG"
				tc.NewCounterparty = true
			},
			wantScore:    100,
			wantDecision: models.DecisionReject,
			wantFlags:    []string{"HIGH_VALUE", "UNUSUAL_TIME", "LOCATION_MISMATCH", "NEW_COUNTERPARTY"},
		},
		{
			name: "location mismatch with new counterparty holds",
			mutate: func(tc *Context) {
				tc.Amount = 4500000
				tc.Location = "Singapore, SG"
			},
			wantScore:    68,
			wantDecision: models.DecisionHold,
			wantFlags:    []string{"HIGH_VALUE", "LOCATION_MISMATCH"},
		},
	}

	scorer := NewRuleScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := base
			tt.mutate(&tc)

			got := scorer.Score(tc)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantDecision, got.Decision)
			assert.Equal(t, tt.wantFlags, append([]string(nil), got.Flags...))
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestNewContextDerivesProfile(t *testing.T) {
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	history := []models.Transaction{
		{Kind: models.TransactionKindPayment, Status: models.StatusCompleted, Amount: 100000, Counterparty: "Kopi Kenangan", CreatedAt: now.Add(-2 * time.Hour)},
		{Kind: models.TransactionKindPayment, Status: models.StatusCompleted, Amount: 200000, Counterparty: "Alfamart", CreatedAt: now.Add(-time.Hour)},
		{Kind: models.TransactionKindPayment, Status: models.StatusFailed, Amount: 9000000, Counterparty: "Unknown Corp", CreatedAt: now.Add(-30 * time.Minute)},
		{Kind: models.TransactionKindTopup, Status: models.StatusCompleted, Amount: 5000000, CreatedAt: now.Add(-10 * time.Minute)},
	}

	tc := NewContext("usr_test", 50000, "Kopi Kenangan", "Jakarta, ID", "Jakarta, ID", now, history)

	assert.Equal(t, int64(150000), tc.UserHistory.AvgTransaction, "only completed payments count")
	assert.False(t, tc.NewCounterparty, "previously paid merchant is known")
	assert.Equal(t, now.Add(-10*time.Minute).Format(time.RFC3339), tc.UserHistory.LastLogin)

	fresh := NewContext("usr_test", 50000, "Toko Baru", "Jakarta, ID", "Jakarta, ID", now, history)
	assert.True(t, fresh.NewCounterparty)

	empty := NewContext("usr_test", 50000, "Toko Baru", "Jakarta, ID", "Jakarta, ID", now, nil)
	assert.Equal(t, DefaultAvgTransaction, empty.UserHistory.AvgTransaction)
}

func TestParseHour(t *testing.T) {
	hour, ok := parseHour("2025-05-01T03:12:00Z")
	assert.True(t, ok)
	assert.Equal(t, 3, hour)

	hour, ok = parseHour("2025-05-01 22:45")
	assert.True(t, ok)
	assert.Equal(t, 22, hour)

	_, ok = parseHour("yesterday")
	assert.False(t, ok)
}
