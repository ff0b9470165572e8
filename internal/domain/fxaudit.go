package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateEvent records a rate that was observed or applied.
// Events are append-only; the TTL executor archives and then deletes them.
type ExchangeRateEvent struct {
	ID            string
	CurrencyCode  string
	Rate          decimal.Decimal
	OccurredAt    time.Time
	PolicyApplied string
	Source        string
}

// ArchivedExchangeRateEvent is the archived copy of an ExchangeRateEvent.
type ArchivedExchangeRateEvent struct {
	SourceID      string
	CurrencyCode  string
	Rate          decimal.Decimal
	OccurredAt    time.Time
	PolicyApplied string
	Source        string
	ArchivedAt    time.Time
}

// Archive returns the archive representation of e stamped with archivedAt.
func (e ExchangeRateEvent) Archive(archivedAt time.Time) ArchivedExchangeRateEvent {
	return ArchivedExchangeRateEvent{
		SourceID:      e.ID,
		CurrencyCode:  e.CurrencyCode,
		Rate:          e.Rate,
		OccurredAt:    e.OccurredAt,
		PolicyApplied: e.PolicyApplied,
		Source:        e.Source,
		ArchivedAt:    archivedAt.UTC(),
	}
}

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
