package domain

import "errors"

var (
	// ErrAlreadyInitialized is returned when trying to initialize an escrow
	// that has already been initialized.
	ErrAlreadyInitialized = errors.New("escrow is already initialized")
	// ErrNotInitialized is returned by any operation attempted before the
	// escrow is initialized.
	ErrNotInitialized = errors.New("escrow is not initialized")
	// ErrInvalidAmount is returned if the principal of a trade is zero.
	ErrInvalidAmount = errors.New("trade amount must be greater than zero")
	// ErrInvalidFeeBps is returned for fee rates above 10000 basis points.
	ErrInvalidFeeBps = errors.New("fee basis points must be in range [0, 10000]")
	// ErrArbitratorNotRegistered is returned either when the arbitrator given
	// at trade creation is not registered, or when a dispute is raised on a
	// trade without arbitrator.
	ErrArbitratorNotRegistered = errors.New("arbitrator not registered")
	// ErrTradeNotFound ...
	ErrTradeNotFound = errors.New("trade not found")
	// ErrInvalidStatus is returned when the requested transition is not
	// allowed from the current status of the trade.
	ErrInvalidStatus = errors.New("invalid trade status for the requested operation")
	// ErrOverflow is returned by any checked arithmetic failure.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrNoFeesToWithdraw ...
	ErrNoFeesToWithdraw = errors.New("no fees to withdraw")
	// ErrUnauthorized is returned when the caller is not one of the parties
	// allowed to perform the operation.
	ErrUnauthorized = errors.New("caller is not authorized for this operation")
	// ErrInvalidParties is returned if seller and buyer are missing or are the
	// same account.
	ErrInvalidParties = errors.New("seller and buyer must be distinct non-empty accounts")
	// ErrInvalidResolution is returned for unknown dispute resolutions.
	ErrInvalidResolution = errors.New("unknown dispute resolution")
	// ErrInvalidAddress is returned for empty account or asset identifiers.
	ErrInvalidAddress = errors.New("invalid address")
)

var errorCodes = map[error]int{
	ErrAlreadyInitialized:      1,
	ErrNotInitialized:          2,
	ErrInvalidAmount:           3,
	ErrInvalidFeeBps:           4,
	ErrArbitratorNotRegistered: 5,
	ErrTradeNotFound:           6,
	ErrInvalidStatus:           7,
	ErrOverflow:                8,
	ErrNoFeesToWithdraw:        9,
	ErrUnauthorized:            10,
	ErrInvalidParties:          11,
	ErrInvalidResolution:       12,
	ErrInvalidAddress:          13,
}

// ErrorCode returns the stable numeric code of a domain error, or 0 if err
// does not wrap any of them.
func ErrorCode(err error) int {
	for e, code := range errorCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return 0
}
