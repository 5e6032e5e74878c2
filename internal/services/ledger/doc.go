/*
Package ledger holds the authoritative in-memory session state for the
wallet demo: consumer balances (online, offline vault, pending), the
merchant settlement balance, loyalty points, the wallet lock, network
mode and the append-ordered transaction list.

The store is the single serialization point for state changes. Every
mutation runs against a working copy of the state and is committed only
if the whole mutation succeeds, so readers never observe a partial
write:

	err := store.Update(func(s *ledger.State) error {
	    if err := s.Debit(ledger.PoolOnline, amount); err != nil {
	        return err
	    }
	    s.Credit(ledger.PoolMerchant, settlement)
	    s.AppendTransaction(tx)
	    return nil
	})

Snapshot returns a deep copy; callers may keep or modify it freely.

Balances are int64 minor units. A debit that would drive a pool negative
fails with an insufficient-funds error and leaves the state untouched.
*/
package ledger
