package visualization

import (
	"fmt"
	"math"
)

// viridis control points, dark purple to yellow
var viridis = [][3]float64{
	{68, 1, 84},
	{59, 82, 139},
	{33, 145, 140},
	{94, 201, 98},
	{253, 231, 37},
}

// Color maps t in [0, 1] onto the viridis ramp as a #rrggbb string.
// Values outside the range are clamped; NaN maps to the low end.
func Color(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(viridis)-1)
	i := int(pos)
	if i >= len(viridis)-1 {
		i = len(viridis) - 2
	}
	frac := pos - float64(i)

	var rgb [3]int
	for c := 0; c < 3; c++ {
		v := viridis[i][c] + (viridis[i+1][c]-viridis[i][c])*frac
		rgb[c] = int(math.Round(v))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// scale normalises scores to [0, 1] by min-max. A constant map scales to 0.
type scale struct {
	min, max float64
}

func newScale(scores map[string]float64) scale {
	s := scale{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range scores {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	if len(scores) == 0 {
		s.min, s.max = 0, 0
	}
	return s
}

func (s scale) at(v float64) float64 {
	if s.max-s.min < 1e-15 {
		return 0
	}
	return (v - s.min) / (s.max - s.min)
}
