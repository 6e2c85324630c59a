package utils

import (
	"testing"
	"time"

	"portfolio-sentinel/internal/models"
)

func nyc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, NYCLocation)
}

func TestSessionAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want models.MarketSession
	}{
		{"weekday regular", nyc(2026, 1, 15, 10, 30), models.SessionRegular},
		{"open boundary", nyc(2026, 1, 15, 9, 30), models.SessionRegular},
		{"just before open", nyc(2026, 1, 15, 9, 29), models.SessionPreMarket},
		{"pre-market start", nyc(2026, 1, 15, 4, 0), models.SessionPreMarket},
		{"close boundary", nyc(2026, 1, 15, 16, 0), models.SessionAfterHours},
		{"after hours end", nyc(2026, 1, 15, 19, 59), models.SessionAfterHours},
		{"evening overnight", nyc(2026, 1, 15, 20, 0), models.SessionOvernight},
		{"early overnight", nyc(2026, 1, 15, 3, 59), models.SessionOvernight},
		{"saturday", nyc(2026, 1, 17, 12, 0), models.SessionWeekend},
		{"sunday", nyc(2026, 1, 18, 12, 0), models.SessionWeekend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionAt(tt.at); got != tt.want {
				t.Errorf("SessionAt(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestClockAt(t *testing.T) {
	clock := ClockAt(nyc(2026, 1, 15, 10, 30))
	if clock.Session != models.SessionRegular || !clock.Open {
		t.Errorf("clock = %+v, want open regular session", clock)
	}
	if clock.Date != "2026-01-15" || clock.Weekday != "Thursday" {
		t.Errorf("clock date = %s %s", clock.Date, clock.Weekday)
	}
	if clock.Timezone != "America/New_York" {
		t.Errorf("timezone = %s", clock.Timezone)
	}
}

func TestNextMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"before open same day", nyc(2026, 1, 15, 8, 0), nyc(2026, 1, 15, 9, 30)},
		{"during session rolls to next day", nyc(2026, 1, 15, 11, 0), nyc(2026, 1, 16, 9, 30)},
		{"friday evening skips weekend", nyc(2026, 1, 16, 17, 0), nyc(2026, 1, 19, 9, 30)},
		{"saturday skips to monday", nyc(2026, 1, 17, 12, 0), nyc(2026, 1, 19, 9, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMarketOpen(tt.at); !got.Equal(tt.want) {
				t.Errorf("NextMarketOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
