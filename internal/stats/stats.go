package stats

import "math"

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func Min(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func Max(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func StdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := Mean(vals)
	s := 0.0
	for _, v := range vals {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(vals)))
}

// CoV is the coefficient of variation as a percentage. Zero mean guards to 0.
func CoV(vals []float64) float64 {
	m := Mean(vals)
	if m == 0 {
		return 0
	}
	return StdDev(vals) / m * 100
}

// Spread is (max-min)/mean as a percentage. Zero mean guards to 0.
func Spread(vals []float64) float64 {
	m := Mean(vals)
	if m == 0 {
		return 0
	}
	return (Max(vals) - Min(vals)) / m * 100
}

// Round2 rounds half-up to 2 decimals, the currency convention.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round1 rounds half-up to 1 decimal, the percentage convention.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }
