package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is appended to every formatted amount.
const CurrencySymbol = "₪"

// FormatMoney formats an amount with two decimal places, comma thousands
// grouping and a trailing shekel sign (e.g. "1,234.50 ₪").
// Rounding is half away from zero on the decimal value, so 2.675 prints as
// 2.68 rather than the 2.67 a float formatter would give.
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	raw := decimal.NewFromFloat(amount).StringFixed(2)

	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	parts := strings.SplitN(raw, ".", 2)
	result := groupThousands(parts[0]) + "." + parts[1]
	if negative && strings.Trim(result, "0.,") != "" {
		result = "-" + result
	}
	return result + " " + CurrencySymbol
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(n + n/3)

	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatQty returns a string representation of a quantity or dimension.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// FormatDate renders a date the way it is printed on quotes (dd/mm/yyyy).
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
