package tz

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	loc, err := Load("Local")
	if err != nil || loc != time.Local {
		t.Errorf("Load(Local) = %v, %v", loc, err)
	}
	loc, err = Load("UTC")
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Load(UTC) = %v, %v", loc, err)
	}
	if _, err := Load("Nowhere/Atlantis"); err == nil {
		t.Error("expected error for unknown zone")
	}
}
