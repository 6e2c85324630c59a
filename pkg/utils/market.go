package utils

import (
	"time"

	"portfolio-sentinel/internal/models"
)

// NYCLocation is the timezone for US equity markets.
var NYCLocation *time.Location

func init() {
	var err error
	NYCLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		NYCLocation = time.FixedZone("ET", -5*60*60)
	}
}

// SessionAt returns the trading session for the given instant.
//
// Sessions (Eastern Time): PRE_MARKET 4:00-9:30, REGULAR 9:30-16:00,
// AFTER_HOURS 16:00-20:00, OVERNIGHT otherwise, WEEKEND on Sat/Sun.
func SessionAt(t time.Time) models.MarketSession {
	now := t.In(NYCLocation)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.SessionWeekend
	}

	timeMinutes := now.Hour()*60 + now.Minute()

	switch {
	case timeMinutes < 4*60:
		return models.SessionOvernight
	case timeMinutes < 9*60+30:
		return models.SessionPreMarket
	case timeMinutes < 16*60:
		return models.SessionRegular
	case timeMinutes < 20*60:
		return models.SessionAfterHours
	default:
		return models.SessionOvernight
	}
}

// ClockAt builds a full market clock snapshot for the given instant.
func ClockAt(t time.Time) models.MarketClock {
	now := t.In(NYCLocation)
	session := SessionAt(now)
	return models.MarketClock{
		Timestamp: now,
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		Weekday:   now.Weekday().String(),
		Session:   session,
		Open:      session == models.SessionRegular,
		Timezone:  "America/New_York",
	}
}

// IsMarketOpen returns true if the regular session is in progress.
func IsMarketOpen(t time.Time) bool {
	return SessionAt(t) == models.SessionRegular
}

// NextMarketOpen returns the next regular session opening time after t.
func NextMarketOpen(t time.Time) time.Time {
	now := t.In(NYCLocation)

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 30, 0, 0, NYCLocation)
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
