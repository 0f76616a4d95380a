package catalogue

import (
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

// minScore is the acceptance threshold for a search candidate.
const minScore = 0.55

// extendedQualifiers mark the longer cuts worth a scoring bonus when the
// user's title carries no qualifier at all.
var extendedQualifiers = []string{"extended", "original mix", "club mix"}

// QueryVariants returns the search queries to try for a track, in order:
// exact, swapped order, title only, artist only.
func QueryVariants(artist, title string) []string {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)

	variants := []string{}
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		for _, existing := range variants {
			if existing == q {
				return
			}
		}
		variants = append(variants, q)
	}

	add(fmt.Sprintf("%s %s", artist, title))
	add(fmt.Sprintf("%s %s", title, artist))
	add(title)
	add(artist)

	return variants
}

// Score rates how well a candidate matches the wanted artist/title pair.
// The result is in [0,1] plus a small bonus for "Extended"-style cuts.
func Score(artist, title string, c Candidate) float64 {
	wanted := strings.ToLower(strings.TrimSpace(artist + " " + title))
	got := strings.ToLower(strings.TrimSpace(c.Artist + " " + c.Title))

	overlap := tokenOverlap(wanted, got)
	similarity := strutil.Similarity(wanted, got, metrics.NewJaroWinkler())
	titleDist := normalizedLevenshtein(strings.ToLower(title), strings.ToLower(c.Title))

	score := 0.4*overlap + 0.35*similarity + 0.25*titleDist

	if hasExtendedQualifier(c.Title) && !hasExtendedQualifier(title) {
		score += 0.05
	}

	return score
}

// PickBest returns the highest-scoring acceptable candidate.
func PickBest(artist, title string, candidates []Candidate) (Candidate, float64, bool) {
	var best Candidate
	bestScore := 0.0
	found := false

	for _, c := range candidates {
		s := Score(artist, title, c)
		if s >= minScore && s > bestScore {
			best = c
			bestScore = s
			found = true
		}
	}

	return best, bestScore, found
}

// tokenOverlap returns the fraction of wanted tokens present in got.
func tokenOverlap(wanted, got string) float64 {
	wantedTokens := strings.Fields(wanted)
	if len(wantedTokens) == 0 {
		return 0
	}

	gotSet := map[string]bool{}
	for _, tok := range strings.Fields(got) {
		gotSet[tok] = true
	}

	hits := 0
	for _, tok := range wantedTokens {
		if gotSet[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(wantedTokens))
}

// normalizedLevenshtein maps edit distance into [0,1], 1 meaning identical.
func normalizedLevenshtein(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

func hasExtendedQualifier(title string) bool {
	lower := strings.ToLower(title)
	for _, q := range extendedQualifiers {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}
