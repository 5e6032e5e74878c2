package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"quncipay/internal/errors"
	"quncipay/internal/models"
	"quncipay/internal/repositories/cache"
	"quncipay/internal/services/cards"
	"quncipay/internal/services/ledger"
	"quncipay/internal/services/notification"
	"quncipay/internal/services/risk"
	"quncipay/internal/services/settlement"
)

type service struct {
	store    *ledger.Store
	oracle   risk.Oracle
	gateway  settlement.Gateway
	charger  cards.Charger
	offline  OfflineQueuer
	cache    cache.Service
	notifier notification.Notifier
	config   Config
}

// NewService creates the transaction lifecycle engine.
func NewService(
	store *ledger.Store,
	oracle risk.Oracle,
	gateway settlement.Gateway,
	charger cards.Charger,
	offline OfflineQueuer,
	cacheSvc cache.Service,
	notifier notification.Notifier,
	config Config,
) Service {
	if store == nil {
		panic("ledger store is required")
	}
	if oracle == nil {
		panic("risk oracle is required")
	}
	if gateway == nil {
		panic("settlement gateway is required")
	}
	if charger == nil {
		panic("card charger is required")
	}
	if offline == nil {
		panic("offline queue is required")
	}
	if cacheSvc == nil {
		panic("cache is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	config.applyDefaults()

	return &service{
		store:    store,
		oracle:   oracle,
		gateway:  gateway,
		charger:  charger,
		offline:  offline,
		cache:    cacheSvc,
		notifier: notifier,
		config:   config,
	}
}

// CreatePayment validates and assesses a payment. Online payments are
// scored synchronously before any balance moves; offline payments are
// delegated to the queue for deferred assessment.
func (s *service) CreatePayment(ctx context.Context, req PaymentRequest) (*models.Transaction, error) {
	if req.Amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	snap := s.store.Snapshot()
	if snap.WalletLocked {
		s.notifier.Notify(ctx, notification.TypeError, "Wallet is locked. Contact support to resolve held transactions.")
		return nil, errors.ErrWalletLocked
	}

	if req.IntentKey != "" {
		ok, err := s.cache.SetNX(ctx, IntentCachePrefix+req.IntentKey, "1", s.config.IntentTTL)
		if err != nil {
			log.Warn().Err(err).Msg("intent cache unavailable, skipping idempotency check")
		} else if !ok {
			return nil, errors.ErrDuplicateIntent
		}
	}

	if snap.Network == models.NetworkOffline {
		return s.offline.QueuePayment(ctx, req.Amount, req.Counterparty)
	}

	if snap.User.Online < req.Amount {
		s.notifier.Notify(ctx, notification.TypeError, "Insufficient balance for this payment.")
		return nil, errors.ErrInsufficientBalance
	}

	now := time.Now()
	tc := risk.NewContext(s.config.UserID, req.Amount, req.Counterparty,
		s.config.Location, s.config.TypicalLocation, now, snap.Transactions)

	actx, cancel := context.WithTimeout(ctx, s.config.AssessTimeout)
	defer cancel()
	assessment := s.oracle.Assess(actx, tc)

	tx := models.Transaction{
		ID:           models.NewTransactionID(now),
		Kind:         models.TransactionKindPayment,
		Amount:       req.Amount,
		Channel:      models.ChannelOnline,
		Counterparty: req.Counterparty,
		CreatedAt:    now,
		Risk:         &assessment,
	}

	if assessment.Decision == models.DecisionApprove {
		tx.Status = models.StatusCompleted
		err := s.store.Update(func(st *ledger.State) error {
			if err := completePayment(st, tx); err != nil {
				return err
			}
			st.AppendTransaction(tx)
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, notification.TypeSuccess,
			fmt.Sprintf("Payment of Rp %d successful.", tx.Amount))
		return &tx, nil
	}

	// HOLD and REJECT both suspend the payment: nothing is debited and
	// the wallet locks until an operator resolves the hold.
	tx.Status = models.StatusRiskHold
	if err := s.store.Update(func(st *ledger.State) error {
		st.AppendTransaction(tx)
		st.LockWallet(tx.ID)
		return nil
	}); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notification.TypeError,
		fmt.Sprintf("Payment held by QunciGuard: %s", assessment.Reason))
	return &tx, nil
}

// TopUp credits the online balance with trusted inbound funds.
func (s *service) TopUp(ctx context.Context, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	now := time.Now()
	tx := models.Transaction{
		ID:        models.NewTransactionID(now),
		Kind:      models.TransactionKindTopup,
		Amount:    amount,
		Status:    models.StatusCompleted,
		Channel:   models.ChannelOnline,
		CreatedAt: now,
	}

	if err := s.store.Update(func(st *ledger.State) error {
		if err := st.Credit(ledger.PoolOnline, amount); err != nil {
			return err
		}
		st.AppendTransaction(tx)
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notification.TypeSuccess,
		fmt.Sprintf("Top up of Rp %d successful.", amount))
	return &tx, nil
}

// TopUpWithCard charges a tokenized card before crediting the wallet.
func (s *service) TopUpWithCard(ctx context.Context, token string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	chargeID, err := s.charger.Charge(ctx, token, amount, "QunciPay Top Up")
	if err != nil {
		s.notifier.Notify(ctx, notification.TypeError, "Card charge failed.")
		return nil, err
	}
	log.Info().Str("charge_id", chargeID).Int64("amount", amount).Msg("card charged")

	return s.TopUp(ctx, amount)
}

// CreateTopUpLink returns a gateway-hosted cashier URL for a top-up.
func (s *service) CreateTopUpLink(ctx context.Context, amount int64) (string, error) {
	if amount <= 0 {
		return "", errors.ErrInvalidAmount
	}
	gctx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()
	return s.gateway.CreatePaymentLink(gctx, amount)
}

// TransferToOffline moves funds from the online balance into the vault.
func (s *service) TransferToOffline(ctx context.Context, amount int64) error {
	err := s.store.Update(func(st *ledger.State) error {
		if err := st.Debit(ledger.PoolOnline, amount); err != nil {
			return err
		}
		return st.Credit(ledger.PoolOffline, amount)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, notification.TypeSuccess,
		fmt.Sprintf("Transferred Rp %d to offline wallet.", amount))
	return nil
}

// TransferToOnline moves vault funds back to the online balance.
func (s *service) TransferToOnline(ctx context.Context, amount int64) error {
	err := s.store.Update(func(st *ledger.State) error {
		if err := st.Debit(ledger.PoolOffline, amount); err != nil {
			return err
		}
		return st.Credit(ledger.PoolOnline, amount)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, notification.TypeSuccess,
		fmt.Sprintf("Transferred Rp %d back to online wallet.", amount))
	return nil
}

// CashOut pays out merchant balance through the settlement gateway. On
// gateway failure the ledger is untouched and the gateway's own error
// is returned.
func (s *service) CashOut(ctx context.Context, req CashOutRequest) (*models.Transaction, error) {
	if req.Amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if s.store.Snapshot().MerchantBalance < req.Amount {
		return nil, errors.ErrInsufficientMerchantBalance
	}

	gctx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()
	result, err := s.gateway.Disburse(gctx, settlement.DisbursementRequest{
		Amount:      req.Amount,
		BankCode:    req.BankCode,
		AccountNo:   req.AccountNo,
		AccountName: req.AccountName,
	})
	if err != nil {
		s.notifier.Notify(ctx, notification.TypeError,
			fmt.Sprintf("Cash out failed: %v", err))
		return nil, err
	}

	now := time.Now()
	tx := models.Transaction{
		ID:           models.NewTransactionID(now),
		Kind:         models.TransactionKindCashout,
		Amount:       req.Amount,
		Status:       models.StatusCompleted,
		Channel:      models.ChannelOnline,
		Counterparty: fmt.Sprintf("%s %s", req.BankCode, req.AccountNo),
		CreatedAt:    now,
	}

	if err := s.store.Update(func(st *ledger.State) error {
		if err := st.Debit(ledger.PoolMerchant, req.Amount); err != nil {
			return err
		}
		st.AppendTransaction(tx)
		return nil
	}); err != nil {
		return nil, err
	}

	log.Info().Str("request_no", result.RequestNo).Int64("amount", req.Amount).Msg("cash out settled")
	s.notifier.Notify(ctx, notification.TypeSuccess,
		fmt.Sprintf("Cash out of Rp %d sent to %s.", req.Amount, req.AccountName))
	return &tx, nil
}

// OverrideApprove resolves a held transaction as approved, applying the
// same settlement rule as an automatic approval. Approving twice
// credits the merchant exactly once.
func (s *service) OverrideApprove(ctx context.Context, txID string) (*models.Transaction, error) {
	var out models.Transaction
	err := s.store.Update(func(st *ledger.State) error {
		tx, ok := st.FindTransaction(txID)
		if !ok {
			return errors.ErrTransactionNotFound
		}
		if tx.Resolved() {
			return errors.ErrAlreadyResolved
		}
		if tx.Status != models.StatusRiskHold {
			return errors.ErrNotHeld
		}

		if err := completePayment(st, tx); err != nil {
			return err
		}
		if err := st.MutateTransaction(txID, func(t *models.Transaction) {
			t.Status = models.StatusCompleted
		}); err != nil {
			return err
		}
		st.ReleaseLockCause(txID)

		out = tx
		out.Status = models.StatusCompleted
		return nil
	})
	if err != nil {
		if errors.IsConflict(err) {
			log.Warn().Str("tx_id", txID).Msg("override approve on resolved transaction, ignoring")
		}
		return nil, err
	}

	s.notifier.Notify(ctx, notification.TypeSuccess,
		fmt.Sprintf("Transaction %s approved by operator.", txID))
	return &out, nil
}

// OverrideReject resolves a held transaction as failed. Online holds
// never debited the payer, so no funds move; offline holds refund the
// vault debit taken at creation. The wallet lock is left to the
// operator.
func (s *service) OverrideReject(ctx context.Context, txID string) (*models.Transaction, error) {
	var out models.Transaction
	err := s.store.Update(func(st *ledger.State) error {
		tx, ok := st.FindTransaction(txID)
		if !ok {
			return errors.ErrTransactionNotFound
		}
		if tx.Resolved() {
			return errors.ErrAlreadyResolved
		}
		if tx.Status != models.StatusRiskHold {
			return errors.ErrNotHeld
		}

		if tx.Channel == models.ChannelOffline {
			if err := st.Credit(ledger.PoolOffline, tx.Amount); err != nil {
				return err
			}
		}
		if err := st.MutateTransaction(txID, func(t *models.Transaction) {
			t.Status = models.StatusFailed
		}); err != nil {
			return err
		}

		out = tx
		out.Status = models.StatusFailed
		return nil
	})
	if err != nil {
		if errors.IsConflict(err) {
			log.Warn().Str("tx_id", txID).Msg("override reject on resolved transaction, ignoring")
		}
		return nil, err
	}

	s.notifier.Notify(ctx, notification.TypeInfo,
		fmt.Sprintf("Transaction %s rejected by operator.", txID))
	return &out, nil
}

// SetWalletLock is the operator's manual lock, independent of any
// transaction. Unlocking clears all recorded lock causes.
func (s *service) SetWalletLock(ctx context.Context, locked bool) error {
	err := s.store.Update(func(st *ledger.State) error {
		if locked {
			st.LockWallet("")
		} else {
			st.Unlock()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if locked {
		s.notifier.Notify(ctx, notification.TypeError, "Wallet locked by admin.")
	} else {
		s.notifier.Notify(ctx, notification.TypeSuccess, "Wallet unlocked.")
	}
	return nil
}

// Explanation re-scores a transaction to produce (and cache) the
// oracle's narrative for the risk console.
func (s *service) Explanation(ctx context.Context, txID string) (string, error) {
	snap := s.store.Snapshot()
	tx, ok := snap.FindTransaction(txID)
	if !ok {
		return "", errors.ErrTransactionNotFound
	}

	cacheKey := ExplanationCachePrefix + txID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		return cached, nil
	}

	merchant := tx.Counterparty
	if merchant == "" {
		merchant = "Qunci Payment"
	}
	tc := risk.NewContext(s.config.UserID, tx.Amount, merchant,
		s.config.Location, s.config.TypicalLocation, tx.CreatedAt, snap.Transactions)

	actx, cancel := context.WithTimeout(ctx, s.config.AssessTimeout)
	defer cancel()
	assessment := s.oracle.Assess(actx, tc)

	if err := s.store.MutateTransaction(txID, func(t *models.Transaction) {
		if t.Risk == nil {
			t.Risk = &assessment
			return
		}
		t.Risk.Score = assessment.Score
		t.Risk.Reason = assessment.Reason
		if len(t.Risk.Flags) == 0 {
			t.Risk.Flags = assessment.Flags
		}
	}); err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, cacheKey, assessment.Reason, time.Hour); err != nil {
		log.Warn().Err(err).Msg("failed to cache explanation")
	}
	return assessment.Reason, nil
}
