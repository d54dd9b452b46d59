package models

import (
	"testing"
	"time"
)

func TestNextRunAt_IsStrictlyFuture(t *testing.T) {
	// Daily at 09:00:00; base exactly at 09:00:00 must roll to the next day.
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next, err := NextRunAt("0 0 9 * * *", base)
	if err != nil {
		t.Fatalf("NextRunAt error: %v", err)
	}
	expected := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunAt_BeforeFiringTimeSameDay(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 59, 59, 0, time.UTC)
	next, err := NextRunAt("0 0 9 * * *", base)
	if err != nil {
		t.Fatalf("NextRunAt error: %v", err)
	}
	expected := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunAt_RejectsInvalidExpression(t *testing.T) {
	if _, err := NextRunAt("not a cron", time.Now()); err == nil {
		t.Fatal("expected error for invalid expression")
	}
	// Five fields is the classic format; this parser requires seconds.
	if _, err := NextRunAt("0 9 * * *", time.Now()); err == nil {
		t.Fatal("expected error for five-field expression")
	}
}

func TestNextRunAtOrFallback_UnparseableAddsOneHour(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	next := NextRunAtOrFallback("garbage", base)
	if !next.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected base+1h, got %v", next)
	}
}

func TestResolvePeriod(t *testing.T) {
	today := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		rule     PeriodRule
		expected string
	}{
		{PeriodRuleCurrentMonth, "2025-03"},
		{PeriodRulePrevMonth, "2025-02"},
		{PeriodRuleYesterday, "2025-03-30"},
		{PeriodRuleLast7Days, PeriodLast7Days},
	}
	for _, tc := range cases {
		if got := ResolvePeriod(tc.rule, today); got != tc.expected {
			t.Fatalf("ResolvePeriod(%s) expected %q, got %q", tc.rule, tc.expected, got)
		}
	}
}

func TestResolvePeriod_PrevMonthAcrossYearBoundary(t *testing.T) {
	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := ResolvePeriod(PeriodRulePrevMonth, today); got != "2024-12" {
		t.Fatalf("expected 2024-12, got %q", got)
	}
}
