package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseHours reads one hour cell. Decimal commas are accepted; anything that is
// not a finite non-negative number counts as 0.
func ParseHours(cell string) float64 {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\t':
			return -1
		case ',':
			return '.'
		}
		return r
	}, cell)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// SumHours adds every cell and rounds to 2 decimal places
func SumHours(cells []string) float64 {
	total := decimal.Zero
	for _, c := range cells {
		total = total.Add(decimal.NewFromFloat(ParseHours(c)))
	}
	return clamp(total)
}

// Sum adds hour values exactly and rounds to 2 decimal places
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return clamp(total)
}

// Round2 rounds to 2 decimal places, clamping non-finite or negative input to 0
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return clamp(decimal.NewFromFloat(f))
}

// Times multiplies a per-occurrence constant by a count, rounded
func Times(perUnit float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return Round2(perUnit * float64(n))
}

func clamp(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
