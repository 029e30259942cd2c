package decoder

import (
	"strings"

	"github.com/holiman/uint256"
)

var siPrefixes = map[int]string{
	-12: "p", -9: "n", -6: "u", -3: "m", 0: "", 3: "k", 6: "M", 9: "G", 12: "T",
}

// FormatBalance renders value, an integer count of the smallest unit, in
// the SI-prefixed unit that leaves one to three digits before the point.
// All digits of value are kept.
func FormatBalance(value *uint256.Int, decimals uint8, unit string) (amount, units string) {
	d := int(decimals)
	if value.IsZero() {
		return "0", siPrefixes[clampOrder(floorDiv(-d, 3)*3)] + unit
	}
	digits := value.ToBig().String()
	order := clampOrder(floorDiv(len(digits)-1-d, 3) * 3)
	units = siPrefixes[order] + unit

	frac := d + order
	if frac <= 0 {
		return digits + strings.Repeat("0", -frac), units
	}
	if len(digits) <= frac {
		digits = strings.Repeat("0", frac+1-len(digits)) + digits
	}
	cut := len(digits) - frac
	return digits[:cut] + "." + digits[cut:], units
}

func clampOrder(order int) int {
	if order < -12 {
		return -12
	}
	if order > 12 {
		return 12
	}
	return order
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
