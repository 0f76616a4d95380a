package catalogue

import (
	"testing"
)

func TestQueryVariants(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   []string
	}{
		{
			"full pair",
			"Artist", "Song",
			[]string{"Artist Song", "Song Artist", "Song", "Artist"},
		},
		{
			"title only",
			"", "Song",
			[]string{"Song"},
		},
		{
			"identical artist and title deduped",
			"Echo", "Echo",
			[]string{"Echo Echo", "Echo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QueryVariants(tt.artist, tt.title)
			if len(got) != len(tt.want) {
				t.Fatalf("QueryVariants = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("variant %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScoreOrdersCandidates(t *testing.T) {
	exact := Candidate{Artist: "Artist", Title: "Song"}
	close := Candidate{Artist: "Artist", Title: "Song (Radio Edit)"}
	wrong := Candidate{Artist: "Somebody Else", Title: "Different Tune"}

	sExact := Score("Artist", "Song", exact)
	sClose := Score("Artist", "Song", close)
	sWrong := Score("Artist", "Song", wrong)

	if sExact <= sClose {
		t.Errorf("exact match scored %.2f, qualifier match %.2f; exact should win", sExact, sClose)
	}
	if sClose <= sWrong {
		t.Errorf("close match scored %.2f, unrelated %.2f; close should win", sClose, sWrong)
	}
}

func TestScoreExtendedBonus(t *testing.T) {
	plain := Candidate{Artist: "Artist", Title: "Song"}
	extended := Candidate{Artist: "Artist", Title: "Song (Extended Mix)"}

	base := Score("Artist", "Song", plain)
	bonus := Score("Artist", "Song", extended)

	// The extended cut loses some similarity to the qualifier text but earns
	// the bonus; it must stay within reach of the plain version.
	if bonus < base-0.2 {
		t.Errorf("extended cut scored %.2f vs plain %.2f, penalty too steep", bonus, base)
	}

	// No bonus when the wanted title already names an extended cut.
	same := Score("Artist", "Song (Extended Mix)", extended)
	if same <= bonus {
		t.Errorf("exact extended match %.2f should beat bonus-assisted %.2f", same, bonus)
	}
}

func TestPickBest(t *testing.T) {
	candidates := []Candidate{
		{Artist: "Unrelated", Title: "Noise"},
		{Artist: "Artist", Title: "Song (Live)"},
		{Artist: "Artist", Title: "Song"},
	}

	best, score, ok := PickBest("Artist", "Song", candidates)
	if !ok {
		t.Fatal("PickBest found nothing")
	}
	if best.Title != "Song" {
		t.Errorf("PickBest = %q, want %q", best.Title, "Song")
	}
	if score < minScore {
		t.Errorf("winning score %.2f below threshold %.2f", score, minScore)
	}
}

func TestPickBestRejectsAll(t *testing.T) {
	candidates := []Candidate{
		{Artist: "Unrelated", Title: "Noise"},
		{Artist: "Another", Title: "Thing Entirely"},
	}

	if _, _, ok := PickBest("Artist", "Song", candidates); ok {
		t.Error("PickBest accepted an unrelated candidate")
	}
}

func TestPickBestEmpty(t *testing.T) {
	if _, _, ok := PickBest("Artist", "Song", nil); ok {
		t.Error("PickBest accepted from empty candidates")
	}
}
