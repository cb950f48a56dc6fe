package event

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of a chain event on the events topic.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

const (
	KindMarketListed            = "MarketListed"
	KindAccrueInterest          = "AccrueInterest"
	KindMint                    = "Mint"
	KindRedeem                  = "Redeem"
	KindBorrow                  = "Borrow"
	KindRepayBorrow             = "RepayBorrow"
	KindLiquidateBorrow         = "LiquidateBorrow"
	KindNewReserveFactor        = "NewReserveFactor"
	KindNewCollateralFactor     = "NewCollateralFactor"
	KindNewLiquidationIncentive = "NewLiquidationIncentive"
	KindNewPriceOracle          = "NewPriceOracle"
)

// Wrap serializes a typed chain event into its envelope.
func Wrap(ev any) (Envelope, error) {
	kind := Kind(ev)
	if kind == "" {
		return Envelope{}, fmt.Errorf("unknown event type %T", ev)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return Envelope{Kind: kind, Payload: payload}, nil
}

// Decode turns an envelope back into its typed chain event.
func Decode(env Envelope) (any, error) {
	var ev any
	switch env.Kind {
	case KindMarketListed:
		ev = &MarketListed{}
	case KindAccrueInterest:
		ev = &AccrueInterest{}
	case KindMint:
		ev = &Mint{}
	case KindRedeem:
		ev = &Redeem{}
	case KindBorrow:
		ev = &Borrow{}
	case KindRepayBorrow:
		ev = &RepayBorrow{}
	case KindLiquidateBorrow:
		ev = &LiquidateBorrow{}
	case KindNewReserveFactor:
		ev = &NewReserveFactor{}
	case KindNewCollateralFactor:
		ev = &NewCollateralFactor{}
	case KindNewLiquidationIncentive:
		ev = &NewLiquidationIncentive{}
	case KindNewPriceOracle:
		ev = &NewPriceOracle{}
	default:
		return nil, fmt.Errorf("unknown event kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Payload, ev); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", env.Kind, err)
	}
	return deref(ev), nil
}

// Kind names a typed chain event, or returns "" for foreign types.
func Kind(ev any) string {
	switch ev.(type) {
	case MarketListed, *MarketListed:
		return KindMarketListed
	case AccrueInterest, *AccrueInterest:
		return KindAccrueInterest
	case Mint, *Mint:
		return KindMint
	case Redeem, *Redeem:
		return KindRedeem
	case Borrow, *Borrow:
		return KindBorrow
	case RepayBorrow, *RepayBorrow:
		return KindRepayBorrow
	case LiquidateBorrow, *LiquidateBorrow:
		return KindLiquidateBorrow
	case NewReserveFactor, *NewReserveFactor:
		return KindNewReserveFactor
	case NewCollateralFactor, *NewCollateralFactor:
		return KindNewCollateralFactor
	case NewLiquidationIncentive, *NewLiquidationIncentive:
		return KindNewLiquidationIncentive
	case NewPriceOracle, *NewPriceOracle:
		return KindNewPriceOracle
	}
	return ""
}

// Key is the partition key for an event: the market address where one
// exists, so per-market ordering survives the broker.
func Key(ev any) string {
	switch e := ev.(type) {
	case MarketListed:
		return e.Market
	case AccrueInterest:
		return e.Market
	case Mint:
		return e.Market
	case Redeem:
		return e.Market
	case Borrow:
		return e.Market
	case RepayBorrow:
		return e.Market
	case LiquidateBorrow:
		return e.Market
	case NewReserveFactor:
		return e.Market
	case NewCollateralFactor:
		return e.Market
	}
	return ""
}

func deref(ev any) any {
	switch e := ev.(type) {
	case *MarketListed:
		return *e
	case *AccrueInterest:
		return *e
	case *Mint:
		return *e
	case *Redeem:
		return *e
	case *Borrow:
		return *e
	case *RepayBorrow:
		return *e
	case *LiquidateBorrow:
		return *e
	case *NewReserveFactor:
		return *e
	case *NewCollateralFactor:
		return *e
	case *NewLiquidationIncentive:
		return *e
	case *NewPriceOracle:
		return *e
	}
	return ev
}
