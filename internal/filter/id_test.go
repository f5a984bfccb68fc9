package filter

import "testing"

func TestIDRedactorInclusion(t *testing.T) {
	r := NewIDRedactorInclusion([]string{"ABC"}, "0000")

	if got := r.Redact("ABC"); got != "0000" {
		t.Errorf("Redact(ABC) = %q, want 0000", got)
	}
	if got := r.Redact("XYZ"); got != "XYZ" {
		t.Errorf("Redact(XYZ) = %q, want unchanged XYZ", got)
	}
}

func TestIDRedactorWildcard(t *testing.T) {
	r := NewIDRedactorWildcard("0000")
	for _, id := range []string{"ABC", "XYZ", ""} {
		if got := r.Redact(id); got != "0000" {
			t.Errorf("Redact(%q) = %q, want 0000", id, got)
		}
	}
}

func TestIDRedactorDefaultReplacement(t *testing.T) {
	r := NewIDRedactorWildcard("")
	if got := r.Redact("ABC"); got != DefaultReplacementID {
		t.Errorf("Redact with empty replacement = %q, want default %q", got, DefaultReplacementID)
	}
}

func TestIDRedactorNeverLeaksOriginal(t *testing.T) {
	r := NewIDRedactorInclusion([]string{"SECRET-VIN"}, "0000")
	out := r.Redact("SECRET-VIN")
	if out == "SECRET-VIN" {
		t.Fatal("redaction did not replace a matched id")
	}
}
