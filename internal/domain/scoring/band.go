package scoring

import "github.com/okian/assessor/internal/domain/rubric"

// Band is the qualitative performance band derived from a total score.
type Band string

// Performance bands, best first.
const (
	BandExceptional Band = "Exceptional"
	BandStrong      Band = "Strong"
	BandDeveloping  Band = "Developing"
	BandLimited     Band = "Limited"
)

// Lower bounds are inclusive.
const (
	exceptionalMin = 80
	strongMin      = 60
	developingMin  = 40
)

var bandTable = []struct {
	min  int
	band Band
}{
	{exceptionalMin, BandExceptional},
	{strongMin, BandStrong},
	{developingMin, BandDeveloping},
}

// Bands lists every band from best to worst.
func Bands() []Band {
	return []Band{BandExceptional, BandStrong, BandDeveloping, BandLimited}
}

// ClassifyBand maps a total score to its band, checking thresholds
// highest-first. Anything below the lowest threshold is Limited.
func ClassifyBand(total int) Band {
	for _, row := range bandTable {
		if total >= row.min {
			return row.band
		}
	}
	return BandLimited
}

// Range is the inclusive total range of one band.
type Range struct {
	Band     Band
	Min, Max int
}

// Ranges lists each band's total range, best first.
func Ranges() []Range {
	out := make([]Range, 0, len(bandTable)+1)
	upper := rubric.MaxScore
	for _, row := range bandTable {
		out = append(out, Range{Band: row.band, Min: row.min, Max: upper})
		upper = row.min - 1
	}
	return append(out, Range{Band: BandLimited, Min: 0, Max: upper})
}
