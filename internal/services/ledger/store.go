package ledger

import (
	"sync"

	"quncipay/internal/errors"
	"quncipay/internal/models"
)

// Store owns the session ledger state. All access goes through Snapshot
// and Update; the engine is the only component that mutates balances.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore creates a store seeded with opening balances.
func NewStore(seed Seed) *Store {
	return &Store{
		state: State{
			User: models.Balances{
				Online:  seed.OnlineBalance,
				Offline: seed.OfflineBalance,
			},
			MerchantBalance: seed.MerchantBalance,
			Points:          seed.Points,
			LockCauses:      make(map[string]struct{}),
			Network:         models.NetworkOnline,
		},
	}
}

// Snapshot returns a deep copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Update applies fn to a working copy of the state and commits it only
// if fn returns nil. A failed update leaves the ledger untouched.
func (st *Store) Update(fn func(s *State) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	working := st.state.clone()
	if err := fn(&working); err != nil {
		return err
	}
	st.state = working
	return nil
}

// Debit is a single-operation Update for one pool.
func (st *Store) Debit(pool Pool, amount int64) error {
	return st.Update(func(s *State) error { return s.Debit(pool, amount) })
}

// Credit is a single-operation Update for one pool.
func (st *Store) Credit(pool Pool, amount int64) error {
	return st.Update(func(s *State) error { return s.Credit(pool, amount) })
}

// AppendTransaction records a transaction as the newest entry.
func (st *Store) AppendTransaction(tx models.Transaction) error {
	return st.Update(func(s *State) error {
		s.AppendTransaction(tx)
		return nil
	})
}

// MutateTransaction patches one transaction by ID.
func (st *Store) MutateTransaction(id string, patch func(tx *models.Transaction)) error {
	return st.Update(func(s *State) error { return s.MutateTransaction(id, patch) })
}

func (s *State) clone() State {
	out := *s

	out.Transactions = make([]models.Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	for i := range out.Transactions {
		if r := out.Transactions[i].Risk; r != nil {
			rc := *r
			rc.Flags = append([]string(nil), r.Flags...)
			out.Transactions[i].Risk = &rc
		}
	}

	out.LockCauses = make(map[string]struct{}, len(s.LockCauses))
	for id := range s.LockCauses {
		out.LockCauses[id] = struct{}{}
	}
	return out
}

// Debit removes amount from a pool, rejecting overdrafts.
func (s *State) Debit(pool Pool, amount int64) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	switch pool {
	case PoolOnline:
		if s.User.Online < amount {
			return errors.ErrInsufficientBalance
		}
		s.User.Online -= amount
	case PoolOffline:
		if s.User.Offline < amount {
			return errors.ErrInsufficientOfflineBalance
		}
		s.User.Offline -= amount
	case PoolPending:
		if s.User.Pending < amount {
			return errors.ErrInsufficientBalance
		}
		s.User.Pending -= amount
	case PoolMerchant:
		if s.MerchantBalance < amount {
			return errors.ErrInsufficientMerchantBalance
		}
		s.MerchantBalance -= amount
	default:
		return errors.ErrInvalidAmount
	}
	return nil
}

// Credit adds amount to a pool.
func (s *State) Credit(pool Pool, amount int64) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	switch pool {
	case PoolOnline:
		s.User.Online += amount
	case PoolOffline:
		s.User.Offline += amount
	case PoolPending:
		s.User.Pending += amount
	case PoolMerchant:
		s.MerchantBalance += amount
	default:
		return errors.ErrInvalidAmount
	}
	return nil
}

// AppendTransaction prepends tx; the list is kept newest first.
func (s *State) AppendTransaction(tx models.Transaction) {
	s.Transactions = append([]models.Transaction{tx}, s.Transactions...)
}

// MutateTransaction patches the transaction with the given ID.
func (s *State) MutateTransaction(id string, patch func(tx *models.Transaction)) error {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			patch(&s.Transactions[i])
			return nil
		}
	}
	return errors.ErrTransactionNotFound
}

// FindTransaction returns a copy of the transaction with the given ID.
func (s *State) FindTransaction(id string) (models.Transaction, bool) {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return s.Transactions[i], true
		}
	}
	return models.Transaction{}, false
}

// PendingSync lists transactions still waiting for deferred assessment,
// oldest first so sync resolves them in creation order.
func (s *State) PendingSync() []models.Transaction {
	var out []models.Transaction
	for i := len(s.Transactions) - 1; i >= 0; i-- {
		if s.Transactions[i].Status == models.StatusPendingSync {
			out = append(out, s.Transactions[i])
		}
	}
	return out
}

// LockWallet sets the lock with a causing hold transaction. An empty ID
// records a manual admin lock.
func (s *State) LockWallet(causeTxID string) {
	s.WalletLocked = true
	if causeTxID != "" {
		s.LockCauses[causeTxID] = struct{}{}
	}
}

// ReleaseLockCause drops one causing transaction and unlocks the wallet
// once no causes remain. Manual locks (no causes) stay locked.
func (s *State) ReleaseLockCause(causeTxID string) {
	if _, ok := s.LockCauses[causeTxID]; !ok {
		return
	}
	delete(s.LockCauses, causeTxID)
	if s.WalletLocked && len(s.LockCauses) == 0 {
		s.WalletLocked = false
	}
}

// Unlock clears the lock and all recorded causes.
func (s *State) Unlock() {
	s.WalletLocked = false
	s.LockCauses = make(map[string]struct{})
}

// UserFunds is the sum of all consumer pools. Used by invariant checks:
// it only moves through defined debit/credit operations.
func (s *State) UserFunds() int64 {
	return s.User.Online + s.User.Offline + s.User.Pending
}

// Snapshot converts the state into the read-only UI view.
func (s *State) Snapshot() models.WalletSnapshot {
	return models.WalletSnapshot{
		User:            s.User,
		MerchantBalance: s.MerchantBalance,
		Points:          s.Points,
		WalletLocked:    s.WalletLocked,
		Network:         s.Network,
		Transactions:    s.Transactions,
	}
}
