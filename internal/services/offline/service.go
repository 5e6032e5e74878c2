// Package offline implements the offline payment queue and its sync
// engine. While the device is offline, payments settle locally against
// the vault balance and wait as PENDING_SYNC; when connectivity
// returns, the whole queue is risk-assessed and committed as one batch.
package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"quncipay/internal/errors"
	"quncipay/internal/models"
	"quncipay/internal/services/fees"
	"quncipay/internal/services/ledger"
	"quncipay/internal/services/notification"
	"quncipay/internal/services/risk"
)

// Config holds the sync engine's tunables.
type Config struct {
	UserID          string
	Location        string
	TypicalLocation string
	AssessTimeout   time.Duration
}

func (c *Config) applyDefaults() {
	if c.AssessTimeout <= 0 {
		c.AssessTimeout = 5 * time.Second
	}
	if c.TypicalLocation == "" {
		c.TypicalLocation = c.Location
	}
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	Processed     int   `json:"processed"`
	Approved      int   `json:"approved"`
	Held          int   `json:"held"`
	PointsAwarded int64 `json:"points_awarded"`
}

// Service queues offline payments and reconciles them on sync.
type Service struct {
	store    *ledger.Store
	oracle   risk.Oracle
	notifier notification.Notifier
	config   Config

	// syncMu serializes sync runs so a second trigger waits instead of
	// reassessing the same queue.
	syncMu sync.Mutex
}

// NewService creates the offline queue engine.
func NewService(store *ledger.Store, oracle risk.Oracle, notifier notification.Notifier, config Config) *Service {
	if store == nil {
		panic("ledger store is required")
	}
	if oracle == nil {
		panic("risk oracle is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	config.applyDefaults()
	return &Service{store: store, oracle: oracle, notifier: notifier, config: config}
}

// QueuePayment settles a payment locally: the vault is debited right
// away, the amount is earmarked as pending, and the transaction waits
// for deferred assessment. No oracle call happens here.
func (s *Service) QueuePayment(ctx context.Context, amount int64, counterparty string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	now := time.Now()
	tx := models.Transaction{
		ID:           models.NewTransactionID(now),
		Kind:         models.TransactionKindPayment,
		Amount:       amount,
		Status:       models.StatusPendingSync,
		Channel:      models.ChannelOffline,
		Counterparty: counterparty,
		CreatedAt:    now,
	}

	err := s.store.Update(func(st *ledger.State) error {
		if err := st.Debit(ledger.PoolOffline, amount); err != nil {
			return err
		}
		if err := st.Credit(ledger.PoolPending, amount); err != nil {
			return err
		}
		st.AppendTransaction(tx)
		return nil
	})
	if err != nil {
		if err == errors.ErrInsufficientOfflineBalance {
			s.notifier.Notify(ctx, notification.TypeError, "Insufficient offline balance for this payment.")
		}
		return nil, err
	}

	s.notifier.Notify(ctx, notification.TypeInfo,
		fmt.Sprintf("Payment of Rp %d queued, will sync when online.", amount))
	return &tx, nil
}

// ToggleNetwork flips the simulated connectivity mode. Going back
// online triggers a sync of the queued payments.
func (s *Service) ToggleNetwork(ctx context.Context) (models.NetworkMode, *SyncReport, error) {
	var mode models.NetworkMode
	err := s.store.Update(func(st *ledger.State) error {
		if st.Network == models.NetworkOnline {
			st.Network = models.NetworkOffline
		} else {
			st.Network = models.NetworkOnline
		}
		mode = st.Network
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	if mode == models.NetworkOffline {
		s.notifier.Notify(ctx, notification.TypeInfo, "Offline mode enabled. Payments will use the vault balance.")
		return mode, nil, nil
	}

	report, err := s.Sync(ctx)
	return mode, report, err
}

// Sync risk-assesses every queued payment in parallel and commits the
// whole batch as one ledger update. Approved payments settle to the
// merchant and earn loyalty points; any hold locks the wallet. Held
// amounts stay debited from the vault until an operator resolves them.
func (s *Service) Sync(ctx context.Context) (*SyncReport, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	snap := s.store.Snapshot()
	pending := snap.PendingSync()
	if len(pending) == 0 {
		return &SyncReport{}, nil
	}

	log.Info().Int("count", len(pending)).Msg("syncing offline payments")

	assessments := make([]models.RiskAssessment, len(pending))
	var wg sync.WaitGroup
	for i, tx := range pending {
		wg.Add(1)
		go func(i int, tx models.Transaction) {
			defer wg.Done()
			tc := risk.NewContext(s.config.UserID, tx.Amount, tx.Counterparty,
				s.config.Location, s.config.TypicalLocation, tx.CreatedAt, snap.Transactions)
			actx, cancel := context.WithTimeout(ctx, s.config.AssessTimeout)
			defer cancel()
			assessments[i] = s.oracle.Assess(actx, tc)
		}(i, tx)
	}
	wg.Wait()

	report := &SyncReport{}
	err := s.store.Update(func(st *ledger.State) error {
		for i, queued := range pending {
			current, ok := st.FindTransaction(queued.ID)
			if !ok || current.Status != models.StatusPendingSync {
				continue
			}

			assessment := assessments[i]
			if err := st.Debit(ledger.PoolPending, queued.Amount); err != nil {
				return err
			}

			if assessment.Decision == models.DecisionApprove {
				if err := st.Credit(ledger.PoolMerchant, fees.Settlement(queued.Amount)); err != nil {
					return err
				}
				st.Points += fees.Points(queued.Amount)
				report.PointsAwarded += fees.Points(queued.Amount)
				report.Approved++
				if err := st.MutateTransaction(queued.ID, func(t *models.Transaction) {
					t.Status = models.StatusCompleted
					a := assessment
					t.Risk = &a
				}); err != nil {
					return err
				}
			} else {
				report.Held++
				st.LockWallet(queued.ID)
				if err := st.MutateTransaction(queued.ID, func(t *models.Transaction) {
					t.Status = models.StatusRiskHold
					a := assessment
					t.Risk = &a
				}); err != nil {
					return err
				}
			}
			report.Processed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Held > 0 {
		s.notifier.Notify(ctx, notification.TypeError,
			fmt.Sprintf("Sync complete: %d payment(s) held by QunciGuard. Wallet locked.", report.Held))
	} else if report.Approved > 0 {
		s.notifier.Notify(ctx, notification.TypeSuccess,
			fmt.Sprintf("Sync complete: %d payment(s) settled, %d points earned.", report.Approved, report.PointsAwarded))
	}
	return report, nil
}
