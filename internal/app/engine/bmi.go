package engine

import "math"

// BMI derives body mass index from height (cm) and weight (kg), rounded to
// one decimal. Returns 0 when either measurement is missing.
func BMI(heightCM, weightKG float64) float64 {
	return math.Round(rawBMI(heightCM, weightKG)*10) / 10
}

// rawBMI is the unrounded value the insight rules compare against.
func rawBMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := heightCM / 100
	return weightKG / (m * m)
}
