package loadtest

import (
	"fmt"

	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/tidwall/gjson"
)

// Expectation is what the runner knows about one accepted submission.
type Expectation struct {
	ID    string
	Total int
}

// Verify checks a GET /assessments listing against the accepted
// submissions: every record's total equals the sum of its competency
// scores, its band matches the total, and every accepted id is present
// exactly once with the expected total. Records from other clients are
// checked for consistency but not counted.
func Verify(listing gjson.Result, expected map[string]Expectation, stats *Stats) error {
	if !listing.IsArray() {
		return fmt.Errorf("%w: listing is not an array", ErrVerification)
	}

	seen := make(map[string]int, len(expected))
	var failure error
	listing.ForEach(func(_, rec gjson.Result) bool {
		id := rec.Get("id").String()
		total := int(rec.Get("total_score").Int())

		sum := 0
		rec.Get("scores").ForEach(func(_, s gjson.Result) bool {
			sum += int(s.Get("score").Int())
			return true
		})
		if sum != total {
			failure = fmt.Errorf("%w: %s total %d but scores sum to %d", ErrVerification, id, total, sum)
			return false
		}
		if band := rec.Get("band").String(); band != string(scoring.ClassifyBand(total)) {
			failure = fmt.Errorf("%w: %s total %d classified as %s", ErrVerification, id, total, band)
			return false
		}

		exp, ok := expected[rec.Get("candidate_name").String()]
		if !ok {
			return true
		}
		if exp.ID != id || exp.Total != total {
			failure = fmt.Errorf("%w: %s stored as %s/%d, expected %s/%d", ErrVerification,
				rec.Get("candidate_name").String(), id, total, exp.ID, exp.Total)
			return false
		}
		seen[id]++
		stats.ByBand[string(scoring.ClassifyBand(total))]++
		return true
	})
	if failure != nil {
		return failure
	}

	for name, exp := range expected {
		switch seen[exp.ID] {
		case 1:
		case 0:
			return fmt.Errorf("%w: %s (%s) missing from history", ErrVerification, exp.ID, name)
		default:
			return fmt.Errorf("%w: %s stored %d times", ErrVerification, exp.ID, seen[exp.ID])
		}
	}
	stats.Verified = len(expected)
	return nil
}
