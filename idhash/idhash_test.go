package idhash

import "testing"

func TestHashIsStable(t *testing.T) {
	a := Hash("Drama")
	b := Hash("Drama")
	if a != b {
		t.Fatalf("Hash not stable: %q != %q", a, b)
	}
	if a == Hash("Comedy") {
		t.Fatalf("different input produced same id %q", a)
	}
	if !Valid(a) {
		t.Errorf("Valid(%q) = false", a)
	}
}

func TestNewRandomID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewRandomID()
		if seen[id] {
			t.Fatalf("duplicate random id %q", id)
		}
		seen[id] = true
		if !Valid(id) {
			t.Fatalf("Valid(%q) = false", id)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"abc-def", false},
		{"../etc/passwd", false},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
