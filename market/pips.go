package market

// Unit conversion lives here and nowhere else. Price-distance vs pips
// confusion is the classic silent-correctness bug in FX sizing, so every
// component converts through these helpers instead of inline arithmetic.

const (
	// PipSize is the price-unit size of one pip for a 5-digit major
	// (EURUSD: 0.0001).
	PipSize = 0.0001

	// PointSize is one broker point (tenth of a pip on 5-digit feeds).
	PointSize = 0.00001

	// LotNotional is the base-currency notional of one standard lot.
	LotNotional = 100_000

	// PipValuePerLot is the quote-currency value of one pip per standard
	// lot: LotNotional * PipSize.
	PipValuePerLot = 10.0
)

// PriceToPips converts a price distance into pips.
func PriceToPips(dist float64) float64 {
	return dist / PipSize
}

// PipsToPrice converts pips into a price distance.
func PipsToPrice(pips float64) float64 {
	return pips * PipSize
}

// PointsToPrice converts broker points (MT-style spread units) into a price
// distance.
func PointsToPrice(points float64) float64 {
	return points * PointSize
}

// Notional returns the quote-currency notional of a position.
func Notional(lots, price float64) float64 {
	return lots * LotNotional * price
}
