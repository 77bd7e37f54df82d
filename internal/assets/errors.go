package assets

import "errors"

var (
	ErrInvalidTransfer = errors.New("Transfer amount must be positive and addresses must differ")
	// ErrIndeterminate: the call may or may not have taken effect on chain.
	// The caller must check on-chain state before any retry.
	ErrIndeterminate = errors.New("Asset ledger outcome unknown")
)
