package models

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	inputs := []string{
		"2024-03-05",
		"2024/03/05",
		"03/05/2024",
		"03-05-2024",
		" 2024-03-05 ",
		"2024-03-05 09:30:00",
		"2024-03-05T09:30:00",
	}
	for _, input := range inputs {
		parsed, err := ParseDate(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if FormatDate(parsed) != "2024-03-05" {
			t.Fatalf("expected 2024-03-05 for %q, got %s", input, FormatDate(parsed))
		}
	}

	if _, err := ParseDate("5th of March"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := ParseDate("   "); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

func TestDateOnly(t *testing.T) {
	value := time.Date(2024, 1, 15, 14, 37, 12, 5, time.UTC)
	got := DateOnly(value)
	if !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight, got %s", got)
	}
	if !DateOnly(time.Time{}).IsZero() {
		t.Fatalf("expected zero time to stay zero")
	}
	if FormatDate(time.Time{}) != "" {
		t.Fatalf("expected empty string for zero time")
	}
}

func TestParseFrequencyType(t *testing.T) {
	if f, ok := ParseFrequencyType(" quarterly "); !ok || f != FrequencyQuarterly {
		t.Fatalf("expected QUARTERLY, got %q %v", f, ok)
	}
	if _, ok := ParseFrequencyType("BIWEEKLY"); ok {
		t.Fatalf("expected BIWEEKLY to be rejected")
	}
}

func TestTableSample(t *testing.T) {
	if (Table{}).Sample() != nil {
		t.Fatalf("expected nil sample for empty table")
	}
	table := Table{Rows: []map[string]any{{"設備ID": "EQ001"}, {"設備ID": "EQ002"}}}
	if table.Sample()["設備ID"] != "EQ001" {
		t.Fatalf("expected first row, got %v", table.Sample())
	}
}
