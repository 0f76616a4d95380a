// Package trackkey derives stable track identities from artist and title and
// provides the tiered fuzzy lookup used to correlate records across sources.
//
// Every component that matches tracks goes through [Lookup] so the tier order
// (exact, lower, normalized, deep) is applied identically at all call sites.
package trackkey

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Separator joins artist and title into a key.
const Separator = " - "

// Tier identifies which lookup tier produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierLower
	TierNormalized
	TierDeep
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierLower:
		return "lower"
	case TierNormalized:
		return "normalized"
	case TierDeep:
		return "deep"
	default:
		return "none"
	}
}

// Key derives the canonical identity string for an artist/title pair.
func Key(artist, title string) string {
	return strings.TrimSpace(artist) + Separator + strings.TrimSpace(title)
}

// Split breaks a key back into artist and title. The first " - " wins, since
// titles may themselves contain the separator.
func Split(key string) (artist, title string) {
	parts := strings.SplitN(key, Separator, 2)
	if len(parts) != 2 {
		return "", key
	}
	return parts[0], parts[1]
}

// trailing parenthetical or bracketed qualifiers: "Song (Radio Edit)", "Song [Live]"
var qualifierRe = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*$`)

// Lower returns the case-folded form of a key.
func Lower(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Normalized returns the case-folded key with trailing parenthetical
// qualifiers stripped from the title.
func Normalized(key string) string {
	artist, title := Split(key)
	for {
		stripped := qualifierRe.ReplaceAllString(title, "")
		if stripped == title {
			break
		}
		title = stripped
	}
	if artist == "" {
		return Lower(title)
	}
	return Lower(Key(artist, title))
}

// The optional dot sits outside the trailing word boundary: after "feat" the
// next char is ".", which is non-word on both sides, so `\.?\b` could never
// consume it and the dot would leak into the artist token.
var artistSepRe = regexp.MustCompile(`(?i)\s*(?:,|;|&|\+|\bfeat\b\.?|\bft\b\.?|\bfeaturing\b|\bvs\b\.?|\bx\b)\s*`)

// Deep returns the normalized key with the artist list sorted, so that
// multi-artist tracks compare independently of artist order.
func Deep(key string) string {
	artist, title := Split(Normalized(key))
	names := artistSepRe.Split(artist, -1)
	cleaned := names[:0]
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || !strings.ContainsFunc(n, isAlphanumeric) {
			continue
		}
		cleaned = append(cleaned, n)
	}
	sort.Strings(cleaned)
	if len(cleaned) == 0 {
		return title
	}
	return Key(strings.Join(cleaned, ", "), title)
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Lookup finds the value for key in m by trying the exact key, then the
// lowercase form, then the normalized form, then the deep form, in that fixed
// order. The first tier with a match wins; tiers are never merged. When
// several stored keys collide within one tier the lexicographically smallest
// stored key is used, keeping lookups deterministic.
func Lookup[V any](m map[string]V, key string) (V, Tier, bool) {
	if v, ok := m[key]; ok {
		return v, TierExact, true
	}

	type derive func(string) string
	tiers := []struct {
		tier Tier
		fn   derive
	}{
		{TierLower, Lower},
		{TierNormalized, Normalized},
		{TierDeep, Deep},
	}

	for _, t := range tiers {
		want := t.fn(key)
		best := ""
		found := false
		for stored := range m {
			if t.fn(stored) != want {
				continue
			}
			if !found || stored < best {
				best = stored
				found = true
			}
		}
		if found {
			return m[best], t.tier, true
		}
	}

	var zero V
	return zero, TierNone, false
}

// LookupKey is Lookup for bare key sets, returning the stored key that matched.
func LookupKey(keys map[string]struct{}, key string) (string, Tier, bool) {
	if _, ok := keys[key]; ok {
		return key, TierExact, true
	}

	m := make(map[string]string, len(keys))
	for k := range keys {
		m[k] = k
	}
	stored, tier, ok := lookupStored(m, key)
	return stored, tier, ok
}

func lookupStored(m map[string]string, key string) (string, Tier, bool) {
	for _, t := range []struct {
		tier Tier
		fn   func(string) string
	}{
		{TierLower, Lower},
		{TierNormalized, Normalized},
		{TierDeep, Deep},
	} {
		want := t.fn(key)
		best := ""
		found := false
		for stored := range m {
			if t.fn(stored) != want {
				continue
			}
			if !found || stored < best {
				best = stored
				found = true
			}
		}
		if found {
			return best, t.tier, true
		}
	}
	return "", TierNone, false
}
