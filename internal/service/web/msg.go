package web

import (
	"reflect"

	"github.com/openlend/lendsight/internal/event"
)

type msg struct {
	mType int
	data  []byte
	err   error
}

type BaseMessage struct {
	Name    string
	Payload any
}

func NewMessage(payload any) BaseMessage {
	return BaseMessage{
		Name:    reflect.TypeOf(payload).Name(),
		Payload: payload,
	}
}

// MarketUpdate is the frame pushed to sockets subscribed to a market.
type MarketUpdate struct {
	Market string
	Stats  event.MarketStats
}
