// Package cards charges tokenized cards for wallet top-ups. A Stripe
// charger is used when a secret key is configured; the mock charger
// accepts the usual tok_* test tokens so the demo works offline.
package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// Charger collects a card payment and returns the provider charge ID.
type Charger interface {
	Charge(ctx context.Context, token string, amount int64, description string) (string, error)
}

// New returns a Stripe charger when apiKey is set, the mock otherwise.
func New(apiKey string) Charger {
	if apiKey == "" {
		return &MockCharger{}
	}
	return &StripeCharger{apiKey: apiKey}
}

// StripeCharger charges through the Stripe charges API.
type StripeCharger struct {
	apiKey string
}

func (s *StripeCharger) Charge(ctx context.Context, token string, amount int64, description string) (string, error) {
	stripe.Key = s.apiKey

	params := &stripe.ChargeParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyIDR)),
		Description: stripe.String(description),
	}
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("invalid card token: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("card charge failed: %w", err)
	}
	return ch.ID, nil
}

// MockCharger approves Stripe-style test tokens and rejects the rest.
type MockCharger struct{}

func (m *MockCharger) Charge(_ context.Context, token string, amount int64, _ string) (string, error) {
	if !strings.HasPrefix(token, "tok_") {
		return "", fmt.Errorf("card token %q declined", token)
	}
	if amount <= 0 {
		return "", fmt.Errorf("invalid charge amount")
	}
	return fmt.Sprintf("ch_mock_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12]), nil
}
