package models

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			"same day ignores clock time",
			time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 15, 1, 0, 0, 0, time.UTC),
			0,
		},
		{
			"ten calendar days",
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
			10,
		},
		{
			"past date is negative",
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			-5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPositionHelpers(t *testing.T) {
	short := Position{Quantity: -2, Type: SecurityOption}
	if !short.IsShort() {
		t.Error("quantity -2 should be short")
	}
	if short.Contracts() != 2 {
		t.Errorf("contracts = %v, want 2", short.Contracts())
	}

	long := Position{Quantity: 3, Type: SecurityOption}
	if long.IsShort() {
		t.Error("quantity 3 should not be short")
	}
	if long.Contracts() != 3 {
		t.Errorf("contracts = %v, want 3", long.Contracts())
	}
}

func TestSeverityAndCategoryRanks(t *testing.T) {
	if SeverityCritical.Rank() >= SeverityWarning.Rank() {
		t.Error("CRITICAL must rank before WARNING")
	}
	if SeverityWarning.Rank() >= SeverityInfo.Rank() {
		t.Error("WARNING must rank before INFO")
	}

	order := []AlertCategory{
		CategoryITMAssignment,
		CategoryCashShortage,
		CategoryHighDelta,
		CategoryExpiringSoon,
		CategoryLargeLoss,
		CategoryNakedOption,
		CategorySkippedRows,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s must rank before %s", order[i-1], order[i])
		}
	}
}
