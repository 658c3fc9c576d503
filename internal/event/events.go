package event

import (
	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvTrade Type = iota + 1
	EvDayClose
)

// Event is the interface for everything the engine emits to its sinks
// (trade store, live feed). Events carry a strictly increasing sequence
// number so a persisted stream replays in execution order.
type Event interface {
	GetSeq() uint64
	GetTime() domain.Time
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq  uint64      `json:"seq"`
	Time domain.Time `json:"time"` // engine clock when the event fired
}

func (e BaseEvent) GetSeq() uint64       { return e.Seq }
func (e BaseEvent) GetTime() domain.Time { return e.Time }

// TradeEvent is emitted once per fill, immediately after the fill is
// committed to the ledger.
type TradeEvent struct {
	BaseEvent
	Trade domain.Trade `json:"trade"`
}

func (e TradeEvent) GetType() Type { return EvTrade }

// DayCloseEvent is emitted when the clock rolls over to a new day and
// records the closing state of the day that just ended.
type DayCloseEvent struct {
	BaseEvent
	Day        int              `json:"day"`
	CloseCents quant.PriceCents `json:"close"`
	Trades     int              `json:"trades"`
}

func (e DayCloseEvent) GetType() Type { return EvDayClose }

// Sink receives engine events. Sinks run synchronously on the engine's
// thread and must not call back into the engine.
type Sink func(Event)
