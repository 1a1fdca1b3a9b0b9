// internal/app/system/receipts/receipts.go

// Package receipts generates human-readable payment receipt codes and the
// base/fine breakdown shown on receipts.
package receipts

import (
	"fmt"
	"math/rand"
	"time"
)

// baseCap is the base-amount cap used on receipts: anything above it is
// presented as fine. Matches how existing receipts were rendered.
const baseCap = 1000

// Code returns a receipt code of the form PI{ddmmyyyy}{4-digit random},
// e.g. PI150620247341.
func Code(now time.Time, rng *rand.Rand) string {
	n := 1000 + rng.Intn(9000)
	return fmt.Sprintf("PI%02d%02d%04d%d", now.Day(), int(now.Month()), now.Year(), n)
}

// Breakdown splits a paid amount into the base and fine portions shown on a
// receipt.
type Breakdown struct {
	Base  int64 `json:"base"`
	Fine  int64 `json:"fine"`
	Total int64 `json:"total"`
}

// Split computes the receipt breakdown for a paid amount.
func Split(amount int64) Breakdown {
	b := Breakdown{Base: amount, Total: amount}
	if amount > baseCap {
		b.Base = baseCap
		b.Fine = amount - baseCap
	}
	return b
}
