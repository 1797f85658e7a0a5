package models

import (
	"encoding/json"
	"math"
)

const (
	CurrencyPlaces = 2
	PercentPlaces  = 1
)

// RoundTo rounds half away from zero to the given number of decimal places.
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

func RoundCurrency(value float64) float64 {
	return RoundTo(value, CurrencyPlaces)
}

// RoundPercent also applies to averages of counts.
func RoundPercent(value float64) float64 {
	return RoundTo(value, PercentPlaces)
}

// Money keeps full precision and is rounded to cents only when serialized.
type Money float64

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(RoundCurrency(float64(m)))
}
