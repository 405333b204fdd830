package partner

import "math"

// MaxRateBP is a 100% commission rate in basis points.
const MaxRateBP = 10000

// MaxContractAmount is the largest contract amount, in centimes, whose
// commission and running totals stay representable.
const MaxContractAmount = math.MaxInt64 / MaxRateBP

// CommissionFor returns amount × rate for a rate in basis points, rounded
// toward zero to the centime. Splitting amount on the basis keeps every
// intermediate product below amount for rates up to MaxRateBP.
func CommissionFor(amount, rateBP int64) int64 {
	return amount/MaxRateBP*rateBP + amount%MaxRateBP*rateBP/MaxRateBP
}
