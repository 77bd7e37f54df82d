package payout

import "errors"

var (
	ErrNoHoldings    = errors.New("Farm has no holdings to distribute to")
	ErrInvalidAmount = errors.New("Payout amount must be greater than zero")
)
