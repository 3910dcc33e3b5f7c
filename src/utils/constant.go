package utils

import "time"

// -----------------------------------------------------------------------------

// Mass conversion constants. All spot feeds quote per troy ounce; the local
// market quotes per tola and per 10 gram.
const (
	TroyOunceGrams = 31.1035
	TolaGrams      = 11.6638
	TenGramGrams   = 10.0
)

// -----------------------------------------------------------------------------

// Canonical metric and unit names used across the ledger.
const (
	MetricGold   = "Fine Gold"
	MetricSilver = "Silver"

	UnitTola    = "Tola"
	UnitTenGram = "10 Gram"
)

// -----------------------------------------------------------------------------

// DateLayout is the calendar-date form every persisted date uses.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------

// GramsPerUnit maps a canonical unit name to its mass in grams.
func GramsPerUnit(unit string) float64 {
	switch unit {
	case UnitTenGram:
		return TenGramGrams
	default:
		return TolaGrams
	}
}

// -----------------------------------------------------------------------------

// LocalDate formats t as a calendar date in loc. Date comparisons must use
// the local day boundary, not the UTC instant, or cycles near midnight land
// on the wrong day.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// -----------------------------------------------------------------------------

// OunceUSDToLocal converts a USD-per-ounce figure to local currency per unit:
// usd/oz * fx rate * (grams in unit / grams in ounce) * market markup.
func OunceUSDToLocal(usdPerOunce, fxRate, gramsPerUnit, markup float64) float64 {
	return usdPerOunce * fxRate * (gramsPerUnit / TroyOunceGrams) * markup
}
