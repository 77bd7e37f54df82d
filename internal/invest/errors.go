package invest

import "errors"

var (
	ErrInvalidInvestor = errors.New("A valid investor email is required")
	ErrInvalidWallet   = errors.New("Invalid Algorand wallet address format")
	ErrFarmNotFound    = errors.New("Farm not found")
	ErrNotTokenized    = errors.New("Farm is not tokenized yet")
)
