// Package models provides domain models for portfolio analysis.
package models

import (
	"time"
)

// SecurityType classifies a brokerage holding row.
type SecurityType string

const (
	SecurityEquity SecurityType = "EQUITY"
	SecurityOption SecurityType = "OPTION"
	SecurityCash   SecurityType = "CASH"
)

// OptionType represents the side of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// MarketSession represents the current US equities trading session.
type MarketSession string

const (
	SessionRegular    MarketSession = "REGULAR"
	SessionPreMarket  MarketSession = "PRE_MARKET"
	SessionAfterHours MarketSession = "AFTER_HOURS"
	SessionOvernight  MarketSession = "OVERNIGHT"
	SessionWeekend    MarketSession = "WEEKEND"
)

// Position represents one brokerage holding line, parsed from a CSV export.
// Negative quantity indicates a short position. Option fields are populated
// only when Type is SecurityOption; a valid OPTION row always carries
// underlying, option type, strike, expiration, and delta.
type Position struct {
	Symbol      string
	Quantity    float64
	Price       float64
	MarketValue float64
	GainPercent float64 // signed, in percent units (-12.5 means down 12.5%)
	Type        SecurityType

	// Option-only fields.
	Underlying string
	OptionType OptionType
	Strike     float64
	Expiration time.Time
	Delta      float64 // signed, -1.0..1.0
}

// IsShort reports whether the position is short.
func (p Position) IsShort() bool {
	return p.Quantity < 0
}

// Contracts returns the absolute number of option contracts held.
func (p Position) Contracts() float64 {
	if p.Quantity < 0 {
		return -p.Quantity
	}
	return p.Quantity
}

// DaysToExpiration returns calendar days from asOf to the option's expiration.
func (p Position) DaysToExpiration(asOf time.Time) int {
	return DaysBetween(asOf, p.Expiration)
}

// DaysBetween counts calendar days between two instants, ignoring clock time.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Quote represents a market quote for an underlying.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_pct"`
	PrevClose     float64   `json:"prev_close"`
	Volume        int64     `json:"volume"`
	VWAP          float64   `json:"vwap,omitempty"`
	MarketCap     int64     `json:"market_cap,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// MarketClock describes the market session at a point in time.
type MarketClock struct {
	Timestamp time.Time     `json:"timestamp"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Weekday   string        `json:"weekday"`
	Session   MarketSession `json:"session"`
	Open      bool          `json:"open"`
	Timezone  string        `json:"timezone"`
}
