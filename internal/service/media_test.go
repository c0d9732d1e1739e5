package service

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"Alice Nguyen", "alice-nguyen"},
		{"hello, world!", "hello-world"},
		{"  spaced  out  ", "spaced-out"},
		{"___", "image"},
		{"", "image"},
		{"Café 42", "caf-42"},
	}

	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestImageKey(t *testing.T) {
	key := imageKey("uploads/profile", "Alice Nguyen")

	if !strings.HasPrefix(key, "uploads/profile/alice-nguyen-") {
		t.Errorf("key = %q, want uploads/profile/alice-nguyen-<uuid> prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want .jpg suffix", key)
	}
}
