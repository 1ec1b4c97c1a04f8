package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// helpers returns the functions a program may call. Everything here is pure
// apart from drawing from rng.
func helpers(rng *rand.Rand) map[string]any {
	return map[string]any{
		"randint": func(lo, hi any) int {
			a, b := toInt(lo), toInt(hi)
			if b < a {
				a, b = b, a
			}
			return a + rng.IntN(b-a+1)
		},
		"uniform": func(lo, hi any) float64 {
			a, b := toFloat(lo), toFloat(hi)
			return a + rng.Float64()*(b-a)
		},
		"choice": func(items []any) any {
			if len(items) == 0 {
				return nil
			}
			return items[rng.IntN(len(items))]
		},
		"shuffle": func(items []any) []any {
			out := append([]any(nil), items...)
			rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
			return out
		},
		"roundTo": func(x any, places any) float64 {
			p := math.Pow(10, float64(toInt(places)))
			return math.Round(toFloat(x)*p) / p
		},
		"gcd": func(a, b any) int {
			x, y := abs(toInt(a)), abs(toInt(b))
			for y != 0 {
				x, y = y, x%y
			}
			return x
		},
		"format": func(f string, args ...any) string {
			return fmt.Sprintf(f, args...)
		},
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
