// Package fees centralizes the fixed-point money math applied when a
// payment settles to the merchant.
package fees

// MDRBasisPoints is the merchant discount rate: 1.5%.
const MDRBasisPoints int64 = 150

// PointsDivisor awards one loyalty point per 1,000 units spent.
const PointsDivisor int64 = 1000

// Fee returns the MDR fee for amount, rounded down.
func Fee(amount int64) int64 {
	return amount * MDRBasisPoints / 10000
}

// Settlement returns the merchant's net credit for a completed payment.
func Settlement(amount int64) int64 {
	return amount - Fee(amount)
}

// Points returns the loyalty points earned for a synced offline payment.
func Points(amount int64) int64 {
	return amount / PointsDivisor
}
