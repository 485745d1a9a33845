package domain

import (
	"fmt"
	"strings"

	"github.com/tdex-network/escrowd/pkg/mathutil"
)

// TradeStatus represents the different statuses that a trade can assume.
type TradeStatus uint8

const (
	TradeStatusUndefined TradeStatus = iota
	TradeStatusCreated
	TradeStatusFunded
	TradeStatusCompleted
	TradeStatusDisputed
	TradeStatusCancelled
	// TradeStatusConfirmed is the terminal status of a trade whose receipt has
	// been confirmed by the buyer, and the payout released to the seller.
	TradeStatusConfirmed
	// TradeStatusResolved is the terminal status of a disputed trade whose
	// payout has been released by the arbitrator.
	TradeStatusResolved
)

var tradeStatusNames = map[TradeStatus]string{
	TradeStatusUndefined: "Undefined",
	TradeStatusCreated:   "Created",
	TradeStatusFunded:    "Funded",
	TradeStatusCompleted: "Completed",
	TradeStatusDisputed:  "Disputed",
	TradeStatusCancelled: "Cancelled",
	TradeStatusConfirmed: "Confirmed",
	TradeStatusResolved:  "Resolved",
}

func (s TradeStatus) String() string {
	if name, ok := tradeStatusNames[s]; ok {
		return name
	}
	return tradeStatusNames[TradeStatusUndefined]
}

// ParseTradeStatus returns the status with the given name, case insensitive.
func ParseTradeStatus(name string) (TradeStatus, error) {
	for status, statusName := range tradeStatusNames {
		if strings.EqualFold(name, statusName) {
			return status, nil
		}
	}
	return TradeStatusUndefined, fmt.Errorf("unknown trade status %q", name)
}

// IsFinal returns whether no further transition is possible from the status.
func (s TradeStatus) IsFinal() bool {
	return s == TradeStatusCancelled ||
		s == TradeStatusConfirmed ||
		s == TradeStatusResolved
}

// Trade is the data structure representing an escrow trade between a seller
// and a buyer. Apart from Status, every field is immutable once the trade is
// created.
type Trade struct {
	ID         uint64
	Seller     string
	Buyer      string
	Amount     uint64
	Fee        uint64
	Arbitrator string
	Status     TradeStatus
}

// NewTrade returns a trade in Created status after validating its terms. The
// fee must be already computed with the rate in force at creation time.
func NewTrade(
	id uint64, seller, buyer string, amount, fee uint64, arbitrator string,
) (*Trade, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if len(seller) <= 0 || len(buyer) <= 0 || seller == buyer {
		return nil, ErrInvalidParties
	}
	if fee > amount {
		return nil, ErrOverflow
	}

	return &Trade{
		ID:         id,
		Seller:     seller,
		Buyer:      buyer,
		Amount:     amount,
		Fee:        fee,
		Arbitrator: arbitrator,
		Status:     TradeStatusCreated,
	}, nil
}

// Fund brings a trade from Created to Funded status.
func (t *Trade) Fund() error {
	if !t.IsCreated() {
		return ErrInvalidStatus
	}
	t.Status = TradeStatusFunded
	return nil
}

// Complete brings a trade from Funded to Completed status.
func (t *Trade) Complete() error {
	if !t.IsFunded() {
		return ErrInvalidStatus
	}
	t.Status = TradeStatusCompleted
	return nil
}

// Confirm brings a trade from Completed to the terminal Confirmed status and
// returns the payout due to the seller.
func (t *Trade) Confirm() (uint64, error) {
	if !t.IsCompleted() {
		return 0, ErrInvalidStatus
	}
	payout, err := t.Payout()
	if err != nil {
		return 0, err
	}
	t.Status = TradeStatusConfirmed
	return payout, nil
}

// Cancel brings a trade from Created to Cancelled status. Once funded, a trade
// can't be cancelled anymore.
func (t *Trade) Cancel() error {
	if !t.IsCreated() {
		return ErrInvalidStatus
	}
	t.Status = TradeStatusCancelled
	return nil
}

// Dispute brings a Funded or Completed trade to Disputed status. Only trades
// created with an arbitrator can be disputed.
func (t *Trade) Dispute() error {
	if !t.IsFunded() && !t.IsCompleted() {
		return ErrInvalidStatus
	}
	if !t.HasArbitrator() {
		return ErrArbitratorNotRegistered
	}
	t.Status = TradeStatusDisputed
	return nil
}

// Resolve brings a Disputed trade to the terminal Resolved status and returns
// the recipient of the payout according to the given resolution, and the
// payout itself.
func (t *Trade) Resolve(resolution DisputeResolution) (string, uint64, error) {
	if !t.IsDisputed() {
		return "", 0, ErrInvalidStatus
	}
	if !t.HasArbitrator() {
		return "", 0, ErrArbitratorNotRegistered
	}
	recipient, err := resolution.Recipient(*t)
	if err != nil {
		return "", 0, err
	}
	payout, err := t.Payout()
	if err != nil {
		return "", 0, err
	}
	t.Status = TradeStatusResolved
	return recipient, payout, nil
}

// Payout returns the amount released on settlement, that is the principal
// with the platform fee subtracted.
func (t *Trade) Payout() (uint64, error) {
	payout, err := mathutil.LessFee(t.Amount, t.Fee)
	if err != nil {
		return 0, ErrOverflow
	}
	return payout, nil
}

// IsParty returns whether the given account is either the seller or the
// buyer of the trade.
func (t *Trade) IsParty(account string) bool {
	return len(account) > 0 && (account == t.Seller || account == t.Buyer)
}

// HasArbitrator returns whether an arbitrator was bound to the trade at
// creation.
func (t *Trade) HasArbitrator() bool {
	return len(t.Arbitrator) > 0
}

// IsCreated returns whether the trade is in Created status.
func (t *Trade) IsCreated() bool {
	return t.Status == TradeStatusCreated
}

// IsFunded returns whether the trade is in Funded status.
func (t *Trade) IsFunded() bool {
	return t.Status == TradeStatusFunded
}

// IsCompleted returns whether the trade is in Completed status.
func (t *Trade) IsCompleted() bool {
	return t.Status == TradeStatusCompleted
}

// IsDisputed returns whether the trade is in Disputed status.
func (t *Trade) IsDisputed() bool {
	return t.Status == TradeStatusDisputed
}
