package player

import "testing"

func TestCanonicalExternalID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"abcd1234abcd1234abcd1234abcd1234":     "abcd1234-abcd-1234-abcd-1234abcd1234",
		"ABCD1234ABCD1234ABCD1234ABCD1234":     "abcd1234-abcd-1234-abcd-1234abcd1234",
		"abcd1234-abcd-1234-abcd-1234abcd1234": "abcd1234-abcd-1234-abcd-1234abcd1234",
		"short":                                "short",
		"":                                     "",
		"zzzz1234abcd1234abcd1234abcd1234":     "zzzz1234abcd1234abcd1234abcd1234",
	}
	for in, want := range cases {
		if got := CanonicalExternalID(in); got != want {
			t.Fatalf("CanonicalExternalID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompactExternalID(t *testing.T) {
	t.Parallel()

	if got := CompactExternalID("abcd1234-abcd-1234-abcd-1234abcd1234"); got != "abcd1234abcd1234abcd1234abcd1234" {
		t.Fatalf("unexpected compact id: %s", got)
	}
}

func TestPlayer_Validate(t *testing.T) {
	t.Parallel()

	if err := (Player{UUID: "u1"}).Validate(); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if err := (Player{Name: "Steve"}).Validate(); err == nil {
		t.Fatalf("expected error for missing uuid")
	}
	if err := (Player{UUID: "u1", Name: "Steve"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
