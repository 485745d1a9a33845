package domain

// DisputeResolution is the outcome chosen by the arbitrator of a disputed
// trade. The set of resolutions is closed.
type DisputeResolution uint8

const (
	ReleaseToBuyer DisputeResolution = iota + 1
	ReleaseToSeller
)

const (
	releaseToBuyerLabel  = "ReleaseToBuyer"
	releaseToSellerLabel = "ReleaseToSeller"
)

// ParseDisputeResolution returns the resolution matching the given label.
func ParseDisputeResolution(label string) (DisputeResolution, error) {
	switch label {
	case releaseToBuyerLabel:
		return ReleaseToBuyer, nil
	case releaseToSellerLabel:
		return ReleaseToSeller, nil
	}
	return 0, ErrInvalidResolution
}

func (r DisputeResolution) String() string {
	switch r {
	case ReleaseToBuyer:
		return releaseToBuyerLabel
	case ReleaseToSeller:
		return releaseToSellerLabel
	}
	return "Unknown"
}

// Recipient returns the party of the trade that receives the payout.
func (r DisputeResolution) Recipient(trade Trade) (string, error) {
	switch r {
	case ReleaseToBuyer:
		return trade.Buyer, nil
	case ReleaseToSeller:
		return trade.Seller, nil
	}
	return "", ErrInvalidResolution
}
