package eval

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/angelmondragon/opspulse-backend/internal/copilot"
)

const (
	maxScore        = 5.0
	ownerMarker     = "[Owner:"
	numericSampleN  = 8
	numericPenalty  = 0.5
	wordPenalty     = 1.0
	metaKey         = "meta"
	schemaErrorText = "schema validation failed"
)

var (
	channelWords = []string{"DoorDash", "Uber Eats", "Website", "Google", "Catering"}
	storeWords   = []string{
		"Downtown", "River North", "West Loop", "South Market", "Lakeside",
		"Uptown", "Old Town", "Mission", "SoMa", "Capitol Hill",
	}

	isoDateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	numberRe  = regexp.MustCompile(`\b\d+(?:\.\d+)?%?\b`)
)

// Scores are the per-case heuristics. All are zero when the schema fails.
type Scores struct {
	SchemaPass           int     `json:"schema_pass"`
	Actionability        float64 `json:"actionability"`
	SpecificityToData    float64 `json:"specificity_to_data"`
	HallucinationPenalty float64 `json:"hallucination_penalty"`
}

// CheckSchema validates a copilot body against the answer contract. The meta
// block is not part of the contract and is dropped first.
func CheckSchema(body []byte) (*copilot.Answer, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, errors.New("response is not a JSON object")
	}
	delete(obj, metaKey)
	stripped, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return copilot.Validate(stripped)
}

// Score computes the heuristics for a schema-valid answer.
func Score(a copilot.Answer) Scores {
	return Scores{
		SchemaPass:           1,
		Actionability:        Actionability(a),
		SpecificityToData:    Specificity(a),
		HallucinationPenalty: HallucinationPenalty(a),
	}
}

// Actionability counts actions up to five, with a bonus when any names an owner.
func Actionability(a copilot.Answer) float64 {
	score := math.Min(maxScore, float64(len(a.RecommendedActions)))
	for _, act := range a.RecommendedActions {
		if strings.Contains(act.Action, ownerMarker) {
			return math.Min(maxScore, score+1)
		}
	}
	return score
}

// Specificity counts cited data points up to five, minus one when none carries
// an ISO date.
func Specificity(a copilot.Answer) float64 {
	score := math.Min(maxScore, float64(len(a.UsedDataPoints)))
	hasDate := false
	for _, p := range a.UsedDataPoints {
		if isoDateRe.MatchString(p) {
			hasDate = true
			break
		}
	}
	if !hasDate && score > 0 {
		score--
	}
	return math.Max(0, score)
}

// HallucinationPenalty starts at five and deducts for channel and store names
// and numeric claims that appear in the prose but not in used_data_points.
func HallucinationPenalty(a copilot.Answer) float64 {
	used := strings.Join(a.UsedDataPoints, "\n")
	text := answerText(a)

	score := maxScore
	for _, words := range [][]string{channelWords, storeWords} {
		for _, w := range words {
			if strings.Contains(text, w) && !strings.Contains(used, w) {
				score -= wordPenalty
			}
		}
	}

	for _, token := range uniqueNumbers(text, numericSampleN) {
		if !strings.Contains(used, token) {
			score -= numericPenalty
		}
	}

	return math.Max(0, math.Min(maxScore, math.Round(score*10)/10))
}

func answerText(a copilot.Answer) string {
	parts := make([]string, 0, 1+len(a.KeyDrivers)+2*len(a.RecommendedActions))
	parts = append(parts, a.Summary)
	parts = append(parts, a.KeyDrivers...)
	for _, act := range a.RecommendedActions {
		parts = append(parts, act.Action, act.Reason)
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func uniqueNumbers(text string, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range numberRe.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}
