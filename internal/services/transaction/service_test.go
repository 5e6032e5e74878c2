package transaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quncipay/internal/errors"
	"quncipay/internal/models"
	"quncipay/internal/repositories/cache"
	"quncipay/internal/services/cards"
	"quncipay/internal/services/ledger"
	"quncipay/internal/services/notification"
	"quncipay/internal/services/offline"
	"quncipay/internal/services/risk"
	"quncipay/internal/services/settlement"
)

// scriptedOracle returns whatever the test tells it to. The sync engine
// assesses concurrently, so the call counter is atomic.
type scriptedOracle struct {
	assess func(tc risk.Context) models.RiskAssessment
	calls  atomic.Int64
}

func (o *scriptedOracle) Assess(_ context.Context, tc risk.Context) models.RiskAssessment {
	o.calls.Add(1)
	return o.assess(tc)
}

func approveAll(risk.Context) models.RiskAssessment {
	return models.RiskAssessment{Score: 5, Decision: models.DecisionApprove, Reason: "No significant risk signals."}
}

func holdAll(risk.Context) models.RiskAssessment {
	return models.RiskAssessment{
		Score:    75,
		Decision: models.DecisionHold,
		Reason:   "Risk score 75: amount is unusual.",
		Flags:    []string{"HIGH_VALUE"},
	}
}

type testEnv struct {
	engine  Service
	store   *ledger.Store
	oracle  *scriptedOracle
	offline *offline.Service
	gateway settlement.Gateway
}

func newTestEnv(t *testing.T, assess func(tc risk.Context) models.RiskAssessment) *testEnv {
	t.Helper()

	store := ledger.NewStore(ledger.Seed{
		OnlineBalance:   5000000,
		OfflineBalance:  500000,
		MerchantBalance: 1250000,
		Points:          1250,
	})
	oracle := &scriptedOracle{assess: assess}
	notifier := notification.NewService()
	offlineSvc := offline.NewService(store, oracle, notifier, offline.Config{})
	gateway, err := settlement.NewClient(settlement.Config{})
	require.NoError(t, err)

	engine := NewService(
		store, oracle, gateway, cards.New(""), offlineSvc,
		cache.NewMemoryCache(), notifier, Config{},
	)
	return &testEnv{engine: engine, store: store, oracle: oracle, offline: offlineSvc, gateway: gateway}
}

func TestCreatePaymentApproved(t *testing.T) {
	env := newTestEnv(t, approveAll)

	tx, err := env.engine.CreatePayment(context.Background(), PaymentRequest{
		Amount:       50000,
		Counterparty: "Kopi Kenangan",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, models.ChannelOnline, tx.Channel)
	require.NotNil(t, tx.Risk)
	assert.Equal(t, models.DecisionApprove, tx.Risk.Decision)

	snap := env.store.Snapshot()
	assert.Equal(t, int64(4950000), snap.User.Online)
	assert.Equal(t, int64(1250000+49250), snap.MerchantBalance)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, tx.ID, snap.Transactions[0].ID)
}

func TestCreatePaymentHeld(t *testing.T) {
	env := newTestEnv(t, holdAll)

	tx, err := env.engine.CreatePayment(context.Background(), PaymentRequest{
		Amount:       4500000,
		Counterparty: "Unknown Electronics",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRiskHold, tx.Status)

	snap := env.store.Snapshot()
	assert.Equal(t, int64(5000000), snap.User.Online, "a held payment never debits the payer")
	assert.Equal(t, int64(1250000), snap.MerchantBalance)
	assert.True(t, snap.WalletLocked)
}

func TestLockedWalletGate(t *testing.T) {
	env := newTestEnv(t, holdAll)

	_, err := env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 4500000, Counterparty: "A"})
	require.NoError(t, err)
	require.True(t, env.store.Snapshot().WalletLocked)

	env.oracle.assess = approveAll
	_, err = env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 1000, Counterparty: "B"})
	assert.Equal(t, errors.ErrWalletLocked, err)
	assert.Len(t, env.store.Snapshot().Transactions, 1, "rejected payment leaves no record")
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t, approveAll)
	ctx := context.Background()

	_, err := env.engine.CreatePayment(ctx, PaymentRequest{Amount: 0, Counterparty: "A"})
	assert.Equal(t, errors.ErrInvalidAmount, err)

	_, err = env.engine.CreatePayment(ctx, PaymentRequest{Amount: 6000000, Counterparty: "A"})
	assert.Equal(t, errors.ErrInsufficientBalance, err)

	assert.Empty(t, env.store.Snapshot().Transactions)
	assert.EqualValues(t, 0, env.oracle.calls.Load(), "validation failures never reach the oracle")
}

func TestDuplicateIntentRejected(t *testing.T) {
	env := newTestEnv(t, approveAll)
	ctx := context.Background()

	req := PaymentRequest{Amount: 1000, Counterparty: "A", IntentKey: "double-click"}
	_, err := env.engine.CreatePayment(ctx, req)
	require.NoError(t, err)

	_, err = env.engine.CreatePayment(ctx, req)
	assert.Equal(t, errors.ErrDuplicateIntent, err)
	assert.Len(t, env.store.Snapshot().Transactions, 1)
}

func TestFailClosedOracleHoldsPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"riskScore": "broken"`))
	}))
	defer srv.Close()

	store := ledger.NewStore(ledger.Seed{OnlineBalance: 5000000})
	notifier := notification.NewService()
	oracle := risk.NewClient(srv.URL, time.Second)
	offlineSvc := offline.NewService(store, oracle, notifier, offline.Config{})
	gateway, err := settlement.NewClient(settlement.Config{})
	require.NoError(t, err)

	engine := NewService(store, oracle, gateway, cards.New(""), offlineSvc,
		cache.NewMemoryCache(), notifier, Config{})

	tx, err := engine.CreatePayment(context.Background(), PaymentRequest{Amount: 50000, Counterparty: "A"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRiskHold, tx.Status)
	require.NotNil(t, tx.Risk)
	assert.Equal(t, 100, tx.Risk.Score)
	assert.Contains(t, tx.Risk.Flags, risk.SystemErrorFlag)
	assert.Equal(t, int64(5000000), store.Snapshot().User.Online)
}

func TestOverrideApprove(t *testing.T) {
	env := newTestEnv(t, holdAll)

	held, err := env.engine.CreatePayment(context.Background(), PaymentRequest{
		Amount:       4500000,
		Counterparty: "Unknown Electronics",
	})
	require.NoError(t, err)

	approved, err := env.engine.OverrideApprove(context.Background(), held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, approved.Status)

	snap := env.store.Snapshot()
	assert.Equal(t, int64(500000), snap.User.Online)
	assert.Equal(t, int64(1250000+4432500), snap.MerchantBalance)
	assert.False(t, snap.WalletLocked)
}

func TestOverrideApproveTwiceSettlesOnce(t *testing.T) {
	env := newTestEnv(t, holdAll)

	held, err := env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 4500000, Counterparty: "A"})
	require.NoError(t, err)

	_, err = env.engine.OverrideApprove(context.Background(), held.ID)
	require.NoError(t, err)
	merchantAfterFirst := env.store.Snapshot().MerchantBalance

	_, err = env.engine.OverrideApprove(context.Background(), held.ID)
	assert.Equal(t, errors.ErrAlreadyResolved, err)
	assert.Equal(t, merchantAfterFirst, env.store.Snapshot().MerchantBalance)
	assert.Equal(t, int64(500000), env.store.Snapshot().User.Online)
}

func TestOverrideApproveUnknownTransaction(t *testing.T) {
	env := newTestEnv(t, approveAll)
	_, err := env.engine.OverrideApprove(context.Background(), "TX-missing")
	assert.Equal(t, errors.ErrTransactionNotFound, err)
}

func TestOverrideRejectOnlineHold(t *testing.T) {
	env := newTestEnv(t, holdAll)

	held, err := env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 4500000, Counterparty: "A"})
	require.NoError(t, err)

	rejected, err := env.engine.OverrideReject(context.Background(), held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, rejected.Status)

	snap := env.store.Snapshot()
	assert.Equal(t, int64(5000000), snap.User.Online, "never debited, nothing to refund")
	assert.Equal(t, int64(1250000), snap.MerchantBalance)
	assert.True(t, snap.WalletLocked, "lock release is the operator's call")
}

func TestOverrideRejectOfflineHoldRefundsVault(t *testing.T) {
	env := newTestEnv(t, holdAll)

	// queue an offline payment, then let sync hold it
	_, _, err := env.offline.ToggleNetwork(context.Background())
	require.NoError(t, err)
	queued, err := env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 50000, Counterparty: "A"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingSync, queued.Status)

	_, _, err = env.offline.ToggleNetwork(context.Background())
	require.NoError(t, err)
	require.True(t, env.store.Snapshot().WalletLocked)

	_, err = env.engine.OverrideReject(context.Background(), queued.ID)
	require.NoError(t, err)

	snap := env.store.Snapshot()
	assert.Equal(t, int64(500000), snap.User.Offline, "vault debit refunded")
	assert.Equal(t, int64(0), snap.User.Pending)
}

func TestTopUp(t *testing.T) {
	env := newTestEnv(t, approveAll)

	tx, err := env.engine.TopUp(context.Background(), 250000)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionKindTopup, tx.Kind)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, int64(5250000), env.store.Snapshot().User.Online)
	assert.EqualValues(t, 0, env.oracle.calls.Load(), "top ups are trusted inbound funds")
}

func TestTopUpWithCard(t *testing.T) {
	env := newTestEnv(t, approveAll)

	_, err := env.engine.TopUpWithCard(context.Background(), "card_declined", 250000)
	require.Error(t, err)
	assert.Equal(t, int64(5000000), env.store.Snapshot().User.Online)

	tx, err := env.engine.TopUpWithCard(context.Background(), "tok_visa", 250000)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, int64(5250000), env.store.Snapshot().User.Online)
}

func TestVaultTransfers(t *testing.T) {
	env := newTestEnv(t, approveAll)
	ctx := context.Background()

	require.NoError(t, env.engine.TransferToOffline(ctx, 200000))
	snap := env.store.Snapshot()
	assert.Equal(t, int64(4800000), snap.User.Online)
	assert.Equal(t, int64(700000), snap.User.Offline)

	require.NoError(t, env.engine.TransferToOnline(ctx, 700000))
	snap = env.store.Snapshot()
	assert.Equal(t, int64(5500000), snap.User.Online)
	assert.Equal(t, int64(0), snap.User.Offline)

	err := env.engine.TransferToOnline(ctx, 1)
	assert.Equal(t, errors.ErrInsufficientOfflineBalance, err)
}

func TestCashOut(t *testing.T) {
	env := newTestEnv(t, approveAll)

	tx, err := env.engine.CashOut(context.Background(), CashOutRequest{
		Amount:      200000,
		BankCode:    "014",
		AccountNo:   "1234567890",
		AccountName: "Budi Santoso",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionKindCashout, tx.Kind)
	assert.Equal(t, int64(1050000), env.store.Snapshot().MerchantBalance)
}

func TestCashOutInsufficientMerchantBalance(t *testing.T) {
	env := newTestEnv(t, approveAll)

	_, err := env.engine.CashOut(context.Background(), CashOutRequest{
		Amount: 2000000, BankCode: "014", AccountNo: "1", AccountName: "x",
	})
	assert.Equal(t, errors.ErrInsufficientMerchantBalance, err)
	assert.Equal(t, int64(1250000), env.store.Snapshot().MerchantBalance)
}

// failingGateway simulates a declined disbursement.
type failingGateway struct{}

func (failingGateway) Disburse(context.Context, settlement.DisbursementRequest) (*settlement.DisbursementResult, error) {
	return nil, &settlement.GatewayError{Code: "40301", Message: "insufficient merchant deposit"}
}

func (failingGateway) CreatePaymentLink(context.Context, int64) (string, error) {
	return "", &settlement.GatewayError{Code: "40301", Message: "insufficient merchant deposit"}
}

func TestCashOutGatewayFailureLeavesLedgerUntouched(t *testing.T) {
	store := ledger.NewStore(ledger.Seed{MerchantBalance: 1250000})
	oracle := &scriptedOracle{assess: approveAll}
	notifier := notification.NewService()
	offlineSvc := offline.NewService(store, oracle, notifier, offline.Config{})

	engine := NewService(store, oracle, failingGateway{}, cards.New(""), offlineSvc,
		cache.NewMemoryCache(), notifier, Config{})

	_, err := engine.CashOut(context.Background(), CashOutRequest{
		Amount: 200000, BankCode: "014", AccountNo: "1", AccountName: "x",
	})
	require.Error(t, err)

	gw, ok := settlement.AsGatewayError(err)
	require.True(t, ok, "gateway failures keep their own error type")
	assert.Equal(t, "40301", gw.Code)
	assert.Equal(t, "insufficient merchant deposit", gw.Message)

	snap := store.Snapshot()
	assert.Equal(t, int64(1250000), snap.MerchantBalance)
	assert.Empty(t, snap.Transactions)
}

func TestSetWalletLock(t *testing.T) {
	env := newTestEnv(t, approveAll)
	ctx := context.Background()

	require.NoError(t, env.engine.SetWalletLock(ctx, true))
	_, err := env.engine.CreatePayment(ctx, PaymentRequest{Amount: 1000, Counterparty: "A"})
	assert.Equal(t, errors.ErrWalletLocked, err)

	require.NoError(t, env.engine.SetWalletLock(ctx, false))
	_, err = env.engine.CreatePayment(ctx, PaymentRequest{Amount: 1000, Counterparty: "A"})
	assert.NoError(t, err)
}

func TestAdminUnlockClearsHoldCauses(t *testing.T) {
	env := newTestEnv(t, holdAll)
	ctx := context.Background()

	_, err := env.engine.CreatePayment(ctx, PaymentRequest{Amount: 4500000, Counterparty: "A"})
	require.NoError(t, err)
	require.True(t, env.store.Snapshot().WalletLocked)

	require.NoError(t, env.engine.SetWalletLock(ctx, false))
	assert.False(t, env.store.Snapshot().WalletLocked)
	assert.Empty(t, env.store.Snapshot().LockCauses)
}

func TestExplanationCachesNarrative(t *testing.T) {
	env := newTestEnv(t, holdAll)

	held, err := env.engine.CreatePayment(context.Background(), PaymentRequest{Amount: 4500000, Counterparty: "A"})
	require.NoError(t, err)
	callsAfterCreate := env.oracle.calls.Load()

	reason, err := env.engine.Explanation(context.Background(), held.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reason)
	assert.Equal(t, callsAfterCreate+1, env.oracle.calls.Load())

	again, err := env.engine.Explanation(context.Background(), held.ID)
	require.NoError(t, err)
	assert.Equal(t, reason, again)
	assert.Equal(t, callsAfterCreate+1, env.oracle.calls.Load(), "second lookup is served from cache")
}

func TestExplanationUnknownTransaction(t *testing.T) {
	env := newTestEnv(t, approveAll)
	_, err := env.engine.Explanation(context.Background(), "TX-missing")
	assert.Equal(t, errors.ErrTransactionNotFound, err)
}
