package datetime

import (
	"errors"
	"testing"
	"time"

	"eventbot/internal/domain"
)

func TestParse(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got, err := Parse("31/12/2999 23:59", loc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2999, 12, 31, 23, 59, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}

	if _, err := Parse("  01/02/2030   10:30 ", loc); err != nil {
		t.Errorf("padded input: %v", err)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2030-01-01 10:00", "31/02/2030 10:00", "01/01/2030", "01/01/2030 25:00"} {
		if _, err := Parse(in, time.UTC); !errors.Is(err, domain.ErrInvalidDateTime) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidDateTime", in, err)
		}
	}
}

func TestFormat(t *testing.T) {
	if Format(time.Time{}, time.UTC) != "" {
		t.Error("zero time should format as empty")
	}
	ts := time.Date(2030, 10, 30, 15, 33, 0, 0, time.UTC)
	if got := Format(ts, time.UTC); got != "30/10/2030 15:33" {
		t.Errorf("Format = %q", got)
	}
}
