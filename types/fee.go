package types

import (
	"fmt"
	"strings"
)

// BasisPoints expresses a proportional fee in hundredths of a percent.
// 100 bps = 1%. All fee arithmetic is integer-only; no floating point.
type BasisPoints uint32

const (
	// Denominator is the full scale: 10000 bps = 100%.
	Denominator BasisPoints = 10000

	// DefaultPlatformFee is the fee applied until the platform owner
	// changes it (100 bps = 1%).
	DefaultPlatformFee BasisPoints = 100

	// MaxPlatformFee is the upper bound the platform owner may set
	// (1000 bps = 10%).
	MaxPlatformFee BasisPoints = 1000
)

// Valid reports whether the fee rate is settable (at most MaxPlatformFee).
func (b BasisPoints) Valid() bool { return b <= MaxPlatformFee }

// FeeOn returns floor(amount * b / 10000). The computation is decomposed so
// it is exact for any uint64 amount without overflowing:
//
//	amount = q*10000 + r, so floor(amount*b/10000) = q*b + floor(r*b/10000)
func (b BasisPoints) FeeOn(amount uint64) uint64 {
	q := amount / uint64(Denominator)
	r := amount % uint64(Denominator)
	return q*uint64(b) + r*uint64(b)/uint64(Denominator)
}

// Split divides a gross amount into the platform fee and the net amount
// credited to the performer. Any fractional basis-point remainder favors
// the performer: the fee rounds down, fee + net == amount always.
func (b BasisPoints) Split(amount uint64) (fee, net uint64) {
	fee = b.FeeOn(amount)
	return fee, amount - fee
}

// String returns a percent representation, e.g. "1%" or "2.25%".
func (b BasisPoints) String() string {
	whole := b / 100
	frac := b % 100
	if frac == 0 {
		return fmt.Sprintf("%d%%", whole)
	}
	s := fmt.Sprintf("%d.%02d", whole, frac)
	s = strings.TrimRight(s, "0")
	return s + "%"
}
