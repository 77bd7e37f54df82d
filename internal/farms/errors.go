package farms

import "errors"

var (
	ErrFarmNotFound     = errors.New("Farm not found")
	ErrAlreadyTokenized = errors.New("Farm is already tokenized")
	ErrSupplyBelowSold  = errors.New("Total tokens cannot drop below tokens already sold")
)
