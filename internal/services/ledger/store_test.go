package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quncipay/internal/errors"
	"quncipay/internal/models"
)

func newTestStore() *Store {
	return NewStore(Seed{
		OnlineBalance:   4500000,
		OfflineBalance:  500000,
		MerchantBalance: 1250000,
		Points:          1250,
	})
}

func TestNewStoreSeedsBalances(t *testing.T) {
	store := newTestStore()
	snap := store.Snapshot()

	assert.Equal(t, int64(4500000), snap.User.Online)
	assert.Equal(t, int64(500000), snap.User.Offline)
	assert.Equal(t, int64(0), snap.User.Pending)
	assert.Equal(t, int64(1250000), snap.MerchantBalance)
	assert.Equal(t, int64(1250), snap.Points)
	assert.Equal(t, models.NetworkOnline, snap.Network)
	assert.False(t, snap.WalletLocked)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	store := newTestStore()
	require.NoError(t, store.AppendTransaction(models.Transaction{
		ID:     "TX-1",
		Status: models.StatusRiskHold,
		Risk:   &models.RiskAssessment{Score: 80, Flags: []string{"HIGH_VALUE"}},
	}))

	snap := store.Snapshot()
	snap.User.Online = 0
	snap.Transactions[0].Status = models.StatusCompleted
	snap.Transactions[0].Risk.Score = 0
	snap.LockCauses["TX-1"] = struct{}{}

	fresh := store.Snapshot()
	assert.Equal(t, int64(4500000), fresh.User.Online)
	assert.Equal(t, models.StatusRiskHold, fresh.Transactions[0].Status)
	assert.Equal(t, 80, fresh.Transactions[0].Risk.Score)
	assert.Empty(t, fresh.LockCauses)
}

func TestDebitRejectsOverdraft(t *testing.T) {
	tests := []struct {
		name    string
		pool    Pool
		amount  int64
		wantErr error
	}{
		{"online overdraft", PoolOnline, 4500001, errors.ErrInsufficientBalance},
		{"offline overdraft", PoolOffline, 500001, errors.ErrInsufficientOfflineBalance},
		{"merchant overdraft", PoolMerchant, 1250001, errors.ErrInsufficientMerchantBalance},
		{"pending overdraft", PoolPending, 1, errors.ErrInsufficientBalance},
		{"zero amount", PoolOnline, 0, errors.ErrInvalidAmount},
		{"negative amount", PoolOnline, -100, errors.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			err := store.Debit(tt.pool, tt.amount)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	store := newTestStore()

	err := store.Update(func(s *State) error {
		require.NoError(t, s.Debit(PoolOnline, 1000000))
		require.NoError(t, s.Credit(PoolMerchant, 1000000))
		// fail after partial mutation of the working copy
		return s.Debit(PoolOffline, 9999999)
	})
	require.Error(t, err)

	snap := store.Snapshot()
	assert.Equal(t, int64(4500000), snap.User.Online)
	assert.Equal(t, int64(1250000), snap.MerchantBalance)
}

func TestTransactionOrdering(t *testing.T) {
	store := newTestStore()
	base := time.Now()
	for i, id := range []string{"TX-a", "TX-b", "TX-c"} {
		require.NoError(t, store.AppendTransaction(models.Transaction{
			ID:        id,
			Status:    models.StatusPendingSync,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	snap := store.Snapshot()
	assert.Equal(t, "TX-c", snap.Transactions[0].ID, "list is newest first")

	pending := snap.PendingSync()
	require.Len(t, pending, 3)
	assert.Equal(t, "TX-a", pending[0].ID, "sync order is oldest first")
	assert.Equal(t, "TX-c", pending[2].ID)
}

func TestLockCauses(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Update(func(s *State) error {
		s.LockWallet("TX-1")
		s.LockWallet("TX-2")
		return nil
	}))
	assert.True(t, store.Snapshot().WalletLocked)

	require.NoError(t, store.Update(func(s *State) error {
		s.ReleaseLockCause("TX-1")
		return nil
	}))
	assert.True(t, store.Snapshot().WalletLocked, "still locked while a cause remains")

	require.NoError(t, store.Update(func(s *State) error {
		s.ReleaseLockCause("TX-2")
		return nil
	}))
	assert.False(t, store.Snapshot().WalletLocked, "unlocked once all causes released")
}

func TestManualLockSurvivesCauseRelease(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Update(func(s *State) error {
		s.LockWallet("") // admin lock, no cause
		return nil
	}))
	require.NoError(t, store.Update(func(s *State) error {
		s.ReleaseLockCause("TX-ghost")
		return nil
	}))
	assert.True(t, store.Snapshot().WalletLocked)

	require.NoError(t, store.Update(func(s *State) error {
		s.Unlock()
		return nil
	}))
	assert.False(t, store.Snapshot().WalletLocked)
}

// TestConservation shuffles funds between pools at random and checks
// that the user total only changes by what was explicitly credited.
func TestConservation(t *testing.T) {
	store := newTestStore()
	rng := rand.New(rand.NewSource(42))
	pools := []Pool{PoolOnline, PoolOffline, PoolPending}

	beforeState := store.Snapshot()
	before := beforeState.UserFunds()
	for i := 0; i < 500; i++ {
		from := pools[rng.Intn(len(pools))]
		to := pools[rng.Intn(len(pools))]
		amount := rng.Int63n(100000) + 1

		_ = store.Update(func(s *State) error {
			if err := s.Debit(from, amount); err != nil {
				return err
			}
			return s.Credit(to, amount)
		})
	}

	afterState := store.Snapshot()
	assert.Equal(t, before, afterState.UserFunds())
}

func TestMutateTransactionNotFound(t *testing.T) {
	store := newTestStore()
	err := store.MutateTransaction("TX-missing", func(tx *models.Transaction) {})
	assert.Equal(t, errors.ErrTransactionNotFound, err)
}
