package transaction

import (
	"quncipay/internal/models"
	"quncipay/internal/services/fees"
	"quncipay/internal/services/ledger"
)

// completePayment applies the one-and-only settlement rule for a payment
// entering COMPLETED: debit the payer (online payments only — offline
// payments were debited from the vault at creation) and credit the
// merchant net of the MDR fee. Callers invoke it exactly once per
// transaction, on the transition into COMPLETED, so the fee can never
// be applied twice.
func completePayment(s *ledger.State, tx models.Transaction) error {
	if tx.Channel == models.ChannelOnline {
		if err := s.Debit(ledger.PoolOnline, tx.Amount); err != nil {
			return err
		}
	}
	return s.Credit(ledger.PoolMerchant, fees.Settlement(tx.Amount))
}
