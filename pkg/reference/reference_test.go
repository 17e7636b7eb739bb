package reference

import (
	"testing"
)

func TestMaxCodeLen(t *testing.T) {
	if n := MaxCodeLen(RedditStatuses()); n != 1 {
		t.Errorf("Expected status width 1, got %d", n)
	}
	if n := MaxCodeLen(PartsOfSpeech()); n != len("WORK_OF_ART") {
		t.Errorf("Expected pos width %d, got %d", len("WORK_OF_ART"), n)
	}
	if n := MaxCodeLen([]string{}); n != 0 {
		t.Errorf("Expected 0 for empty set, got %d", n)
	}
}

func TestRedditStatus_Label(t *testing.T) {
	if StatusSuspended.Label() != "Suspended" {
		t.Errorf("Expected 'Suspended', got %q", StatusSuspended.Label())
	}
	if RedditStatus("X").Valid() {
		t.Error("Expected X to be invalid")
	}
}

func TestParseRedditStatus(t *testing.T) {
	for _, in := range []string{"A", "a", "Active", " active "} {
		s, err := ParseRedditStatus(in)
		if err != nil {
			t.Errorf("ParseRedditStatus(%q) error: %v", in, err)
			continue
		}
		if s != StatusActive {
			t.Errorf("ParseRedditStatus(%q) = %q, want A", in, s)
		}
	}

	if _, err := ParseRedditStatus("banned"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestPartOfSpeech_Inventory(t *testing.T) {
	tags := PartsOfSpeech()
	if tags[0] != PosNone {
		t.Errorf("Expected untagged first, got %q", tags[0])
	}
	if PosNone.Label() != "Untagged" {
		t.Errorf("Expected untagged label, got %q", PosNone.Label())
	}
	if PosOrg.Label() != "Companies, agencies, institutions, etc." {
		t.Errorf("Unexpected ORG label %q", PosOrg.Label())
	}

	// Callers must not be able to mutate the pinned order.
	tags[0] = PosOrg
	if PartsOfSpeech()[0] != PosNone {
		t.Error("PartsOfSpeech returned shared slice")
	}
}

func TestLookupPartOfSpeech(t *testing.T) {
	if p, ok := LookupPartOfSpeech("GPE"); !ok || p != PosGpe {
		t.Errorf("Expected GPE, got %q (%v)", p, ok)
	}
	if _, ok := LookupPartOfSpeech("gpe"); ok {
		t.Error("Lookup should be case-sensitive")
	}
	if _, ok := LookupPartOfSpeech("SPACESHIP"); ok {
		t.Error("Expected unknown label to be rejected")
	}
}

func TestTristate_ValueScan(t *testing.T) {
	for _, want := range []Tristate{Unknown, False, True} {
		v, err := want.Value()
		if err != nil {
			t.Fatalf("Value error: %v", err)
		}
		var got Tristate
		if err := got.Scan(v); err != nil {
			t.Fatalf("Scan(%v) error: %v", v, err)
		}
		if got != want {
			t.Errorf("Round trip of %s gave %s", want, got)
		}
	}
}

func TestTristate_ScanDriverForms(t *testing.T) {
	var ts Tristate
	if err := ts.Scan(true); err != nil || ts != True {
		t.Errorf("Scan(true) = %s, %v", ts, err)
	}
	if err := ts.Scan([]byte("f")); err != nil || ts != False {
		t.Errorf("Scan(\"f\") = %s, %v", ts, err)
	}
	if err := ts.Scan(3.5); err == nil {
		t.Error("Expected error scanning float")
	}
}

func TestTristate_Bool(t *testing.T) {
	if _, known := Unknown.Bool(); known {
		t.Error("Unknown should not be decided")
	}
	if v, known := TristateOf(false).Bool(); !known || v {
		t.Error("Expected decided false")
	}
}
