package ledger

import "errors"

var (
	ErrInvalidQuantity  = errors.New("Holding must own a positive number of tokens")
	ErrOversubscribed   = errors.New("Farm token supply is oversubscribed")
	ErrFarmNotFound     = errors.New("Farm not found")
	ErrHoldingNotFound  = errors.New("Holding not found")
	ErrBatchApplyFailed = errors.New("Payout batch could not be applied")
)
