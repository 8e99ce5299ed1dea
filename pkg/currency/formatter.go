package currency

import (
	"math"
	"strconv"
	"strings"
)

// FormatUSD renders a whole-dollar amount with thousands separators, e.g. "$1,234".
func FormatUSD(amount float64) string {
	dollars := int64(math.Round(amount))

	sign := ""
	if dollars < 0 {
		sign = "-"
		dollars = -dollars
	}

	return sign + "$" + groupThousands(strconv.FormatInt(dollars, 10))
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(digits string) string {
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
