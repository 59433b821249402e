package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("load draft: %w", ErrNoOpenDraft)
	if got := Code(err); got != "no_open_draft" {
		t.Errorf("Code = %q, want no_open_draft", got)
	}
	if got := Code(errors.New("connection refused")); got != "" {
		t.Errorf("Code(non-domain) = %q, want empty", got)
	}
	if Code(nil) != "" {
		t.Error("Code(nil) should be empty")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("x: %w", ErrDateTimeInPast)) {
		t.Error("past datetime should be a validation error")
	}
	if IsValidation(ErrNotOwner) {
		t.Error("not owner is not a validation error")
	}
}

func TestParseRSVPStatus(t *testing.T) {
	tests := map[string]RSVPStatus{
		"yes":       StatusConfirmed,
		"confirmed": StatusConfirmed,
		"no":        StatusDeclined,
		" MAYBE ":   StatusTentative,
	}
	for in, want := range tests {
		got, err := ParseRSVPStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseRSVPStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseRSVPStatus("perhaps"); !errors.Is(err, ErrInvalidRSVP) {
		t.Errorf("unknown choice err = %v", err)
	}
}

func TestDraftStepOrder(t *testing.T) {
	s := StepTitle
	var visited []DraftStep
	for !s.Terminal() {
		visited = append(visited, s)
		s = s.Next()
	}
	if len(visited) != DraftSteps || s != StepComplete {
		t.Errorf("visited %v ending at %v", visited, s)
	}
	if StepTitle.Skippable() || StepDateTime.Skippable() || !StepLocation.Skippable() {
		t.Error("unexpected skippable steps")
	}
}
