package dbbadger

import "errors"

var (
	// ErrImmutableConfig is returned when trying to change the admin or the
	// value asset of an initialized escrow.
	ErrImmutableConfig = errors.New("admin and value asset can't be changed")
	// ErrTradeAlreadyExists ...
	ErrTradeAlreadyExists = errors.New("trade with same id already exists")
)
