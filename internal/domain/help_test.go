package domain

import (
	"testing"
	"time"
)

func TestDayPeriod(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	at := time.Date(2025, 3, 14, 23, 59, 59, 0, loc)
	p := DayPeriod(at)

	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !p.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", p.Start, want)
	}
	if !p.End.Equal(want) {
		t.Errorf("End = %v, want %v", p.End, want)
	}
}

func TestPeriodContains(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	p := Period{Start: day, End: day.AddDate(0, 0, 2)}

	if !p.Contains(day.Add(5 * time.Hour)) {
		t.Error("Contains() = false for day inside period")
	}
	if !p.Contains(day.AddDate(0, 0, 2).Add(23 * time.Hour)) {
		t.Error("Contains() = false for last day of period")
	}
	if p.Contains(day.AddDate(0, 0, 3)) {
		t.Error("Contains() = true for day after period")
	}
	if p.Contains(day.Add(-time.Second)) {
		t.Error("Contains() = true for day before period")
	}
}

func TestRecordResultAdd(t *testing.T) {
	r := RecordResult{Inserted: 1, Duplicates: 2}
	r.Add(RecordResult{Inserted: 3, Duplicates: 4})
	if r.Inserted != 4 || r.Duplicates != 6 {
		t.Errorf("Add() = %+v, want {4 6}", r)
	}
}
