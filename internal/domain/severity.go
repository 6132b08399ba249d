package domain

import "strings"

// Ranked keyword tiers for severity classification. Tier order matters: a
// single critical-tier hit decides the score regardless of lower tiers.
var (
	criticalKeywords = []string{
		"killed", "dead", "deaths", "death toll", "fatalities", "massacre",
		"explosion", "bombing", "attack", "terror", "shooting", "airstrike",
		"invasion", "earthquake", "tsunami", "plane crash", "nuclear",
	}
	highKeywords = []string{
		"protest", "violence", "violent", "emergency", "evacuation", "clashes",
		"riot", "wildfire", "flooding", "flood", "hurricane", "injured",
		"outbreak", "missile",
	}
	mediumKeywords = []string{
		"election", "sanctions", "investigation", "arrested", "indicted",
		"court ruling", "strike", "warning", "summit", "ceasefire",
	}
)

// ClassifySeverity maps free text plus breaking/recency flags to the 1-5
// importance scale. Base score is 2; the highest matching keyword tier sets
// 5/4/3; isBreaking then adds one (capped at 5) and isRecent adds one
// (capped at 4). Case-insensitive substring containment over title+summary.
// Deterministic, no I/O.
func ClassifySeverity(title, summary string, isBreaking, isRecent bool) int {
	text := strings.ToLower(title + " " + summary)

	score := 2
	switch {
	case containsAny(text, criticalKeywords):
		score = 5
	case containsAny(text, highKeywords):
		score = 4
	case containsAny(text, mediumKeywords):
		score = 3
	}

	if isBreaking && score < 5 {
		score++
	}
	if isRecent && score < 4 {
		score++
	}
	return score
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
