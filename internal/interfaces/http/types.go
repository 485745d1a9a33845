package httpinterface

import (
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/infrastructure/auth"
)

type signedRequest struct {
	Proof auth.Proof `json:"proof"`
}

type initializeRequest struct {
	Admin      string     `json:"admin"`
	ValueAsset string     `json:"value_asset"`
	FeeBps     uint32     `json:"fee_bps"`
	Proof      auth.Proof `json:"proof"`
}

type arbitratorRequest struct {
	Address string     `json:"address"`
	Proof   auth.Proof `json:"proof"`
}

type updateFeeRequest struct {
	FeeBps uint32     `json:"fee_bps"`
	Proof  auth.Proof `json:"proof"`
}

type withdrawFeesRequest struct {
	To    string     `json:"to"`
	Proof auth.Proof `json:"proof"`
}

type createTradeRequest struct {
	Seller     string     `json:"seller"`
	Buyer      string     `json:"buyer"`
	Amount     uint64     `json:"amount"`
	Arbitrator string     `json:"arbitrator"`
	Proof      auth.Proof `json:"proof"`
}

type resolveDisputeRequest struct {
	Resolution string     `json:"resolution"`
	Proof      auth.Proof `json:"proof"`
}

type addWebhookRequest struct {
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type depositRequest struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type infoResponse struct {
	Initialized     bool   `json:"initialized"`
	CustodyAccount  string `json:"custody_account"`
	Admin           string `json:"admin,omitempty"`
	ValueAsset      string `json:"value_asset,omitempty"`
	FeeBps          uint32 `json:"fee_bps"`
	FeePercentage   string `json:"fee_percentage"`
	TradeCounter    uint64 `json:"trade_counter"`
	AccumulatedFees uint64 `json:"accumulated_fees"`
}

type tradeInfo struct {
	ID         uint64 `json:"id"`
	Seller     string `json:"seller"`
	Buyer      string `json:"buyer"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
	Arbitrator string `json:"arbitrator,omitempty"`
	Status     string `json:"status"`
}

func newTradeInfo(trade domain.Trade) tradeInfo {
	return tradeInfo{
		ID:         trade.ID,
		Seller:     trade.Seller,
		Buyer:      trade.Buyer,
		Amount:     trade.Amount,
		Fee:        trade.Fee,
		Arbitrator: trade.Arbitrator,
		Status:     trade.Status.String(),
	}
}

type eventInfo struct {
	Seq       uint64            `json:"seq"`
	Topic     string            `json:"topic"`
	TradeID   uint64            `json:"trade_id,omitempty"`
	Payload   map[string]string `json:"payload"`
	Timestamp int64             `json:"timestamp"`
}

func newEventInfo(event domain.Event) eventInfo {
	return eventInfo{
		Seq:       event.Seq,
		Topic:     event.Topic,
		TradeID:   event.TradeID,
		Payload:   event.Payload,
		Timestamp: event.Timestamp,
	}
}
