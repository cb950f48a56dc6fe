package event

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWrapDecodeRoundTrip(t *testing.T) {
	mint := Mint{
		Block:    Block{Number: 42, Timestamp: 1700000000},
		Market:   "0xcdai",
		Minter:   "0xalice",
		Amount:   decimal.New(1, 9),
		TxHash:   "0xaaa",
		LogIndex: 3,
	}

	env, err := Wrap(mint)
	assert.NoError(t, err)
	assert.Equal(t, KindMint, env.Kind)

	got, err := Decode(env)
	assert.NoError(t, err)
	decoded, ok := got.(Mint)
	assert.True(t, ok)
	assert.Equal(t, mint.Market, decoded.Market)
	assert.Equal(t, mint.LogIndex, decoded.LogIndex)
	assert.True(t, mint.Amount.Equal(decoded.Amount))
}

func TestWrapRejectsForeignType(t *testing.T) {
	_, err := Wrap(struct{}{})
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode(Envelope{Kind: "Nope", Payload: []byte("{}")})
	assert.Error(t, err)
}

func TestKeyUsesMarketAddress(t *testing.T) {
	assert.Equal(t, "0xcdai", Key(AccrueInterest{Market: "0xcdai"}))
	assert.Equal(t, "0xcdai", Key(LiquidateBorrow{Market: "0xcdai"}))
	// protocol-wide events carry no market key
	assert.Equal(t, "", Key(NewPriceOracle{Oracle: "0x0racle"}))
	assert.Equal(t, "", Key(NewLiquidationIncentive{}))
}
