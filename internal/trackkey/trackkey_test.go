package trackkey

import (
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{"simple", "Artist", "Song", "Artist - Song"},
		{"trims whitespace", "  Artist ", " Song ", "Artist - Song"},
		{"empty artist", "", "Song", " - Song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.artist, tt.title); got != tt.want {
				t.Errorf("Key(%q, %q) = %q, want %q", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantArtist string
		wantTitle  string
	}{
		{"simple", "Artist - Song", "Artist", "Song"},
		{"separator in title", "Artist - Song - Live", "Artist", "Song - Live"},
		{"no separator", "Song", "", "Song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title := Split(tt.key)
			if artist != tt.wantArtist || title != tt.wantTitle {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.key, artist, title, tt.wantArtist, tt.wantTitle)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"strips radio edit", "Artist - Song (Radio Edit)", "artist - song"},
		{"strips stacked qualifiers", "Artist - Song (Remix) [Live]", "artist - song"},
		{"keeps inner parens", "Artist - Song (Part 1) Continued", "artist - song (part 1) continued"},
		{"lowercases", "ARTIST - SONG", "artist - song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalized(tt.key); got != tt.want {
				t.Errorf("Normalized(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDeep(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{"artist order ignored", "B & A - Song", "A & B - Song", true},
		{"feat separator", "A feat. B - Song", "B & A - Song", true},
		{"ft abbreviation", "A ft. B - Song", "B & A - Song", true},
		{"featuring spelled out", "A featuring B - Song", "A & B - Song", true},
		{"dangling separator", "A feat. - Song", "A - Song", true},
		{"different artists differ", "A & B - Song", "A & C - Song", false},
		{"different titles differ", "A - Song", "A - Other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deep(tt.a) == Deep(tt.b)
			if got != tt.same {
				t.Errorf("Deep(%q)=%q, Deep(%q)=%q, equal=%v, want %v", tt.a, Deep(tt.a), tt.b, Deep(tt.b), got, tt.same)
			}
		})
	}

	// The separator itself must be consumed whole: a leaked "." would turn
	// the artist list into punctuation tokens.
	if got, want := Deep("A feat. B - Song"), "a, b - song"; got != want {
		t.Errorf("Deep(\"A feat. B - Song\") = %q, want %q", got, want)
	}
}

func TestLookupTierOrder(t *testing.T) {
	m := map[string]string{
		"Artist - Song":              "exact",
		"artist - song (radio edit)": "normalized-only",
	}

	// An exact match must win even though the normalized tier would also hit.
	v, tier, ok := Lookup(m, "Artist - Song")
	if !ok || v != "exact" || tier != TierExact {
		t.Fatalf("Lookup exact = (%q, %v, %v), want (exact, TierExact, true)", v, tier, ok)
	}

	// Lowercase tier.
	v, tier, ok = Lookup(m, "ARTIST - SONG")
	if !ok || v != "exact" || tier != TierLower {
		t.Fatalf("Lookup lower = (%q, %v, %v), want (exact, TierLower, true)", v, tier, ok)
	}

	// Present only via its normalized form.
	v, tier, ok = Lookup(m, "Artist - Song (Radio Edit) (Remix)")
	if !ok || tier != TierNormalized {
		t.Fatalf("Lookup normalized = (%q, %v, %v), want TierNormalized", v, tier, ok)
	}

	// Deep tier: swapped artists.
	m2 := map[string]string{"A & B - Song": "deep"}
	v, tier, ok = Lookup(m2, "B & A - Song")
	if !ok || v != "deep" || tier != TierDeep {
		t.Fatalf("Lookup deep = (%q, %v, %v), want (deep, TierDeep, true)", v, tier, ok)
	}

	// No match at any tier.
	if _, tier, ok := Lookup(m, "Nobody - Nothing"); ok || tier != TierNone {
		t.Fatalf("Lookup miss = (%v, %v), want (TierNone, false)", tier, ok)
	}
}

func TestLookupDeterministicWithinTier(t *testing.T) {
	m := map[string]string{
		"Artist - Song (Live)":  "live",
		"Artist - Song (Remix)": "remix",
	}

	// Both stored keys normalize to "artist - song"; the lexicographically
	// smaller stored key must win every time.
	for i := 0; i < 20; i++ {
		v, tier, ok := Lookup(m, "Artist - Song")
		if !ok || tier != TierNormalized || v != "live" {
			t.Fatalf("iteration %d: Lookup = (%q, %v, %v), want (live, TierNormalized, true)", i, v, tier, ok)
		}
	}
}

func TestLookupKey(t *testing.T) {
	keys := map[string]struct{}{
		"Artist - Song": {},
	}

	stored, tier, ok := LookupKey(keys, "artist - song")
	if !ok || stored != "Artist - Song" || tier != TierLower {
		t.Fatalf("LookupKey = (%q, %v, %v), want (Artist - Song, TierLower, true)", stored, tier, ok)
	}

	if _, _, ok := LookupKey(keys, "Other - Track"); ok {
		t.Fatal("LookupKey matched a missing key")
	}
}
