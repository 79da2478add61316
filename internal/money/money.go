// Package money keeps every amount as an int64 count of centavos. Decimal
// strings exist only at the edges: user input and printed documents.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pdv/m/internal/apperr"
)

// MaxLineAmount bounds quantity × unit price on a single line so that sums of
// up to a few thousand lines stay far from int64 overflow.
const MaxLineAmount int64 = 1_000_000_000_000

// ToMajor renders centavos as a decimal string with two fraction digits.
func ToMajor(minor int64) string {
	sign := ""
	u := uint64(minor)
	if minor < 0 {
		sign = "-"
		u = uint64(-(minor + 1)) + 1
	}
	frac := u % 100
	whole := u / 100
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(strconv.FormatUint(whole, 10))
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(frac, 10))
	return b.String()
}

// Format renders centavos the way receipts print them.
func Format(minor int64) string {
	return "R$ " + ToMajor(minor)
}

// FromMajorInput parses a user typed amount in reais ("10", "10.5", "10,50")
// and rounds it to the nearest centavo. When both separators appear the last
// one is the decimal point: "1.234,56" and "1,234.56" are the same amount.
func FromMajorInput(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.Validation("amount", "is required")
	}
	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperr.Validationf("amount", "%q is not a decimal number", s)
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || cents.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, apperr.Validationf("amount", "%q is out of range", s)
	}
	return cents.IntPart(), nil
}

// Multiply is the exact line total for quantity units at unit centavos.
func Multiply(unit, quantity int64) int64 {
	return unit * quantity
}

// Sum adds amounts in centavos.
func Sum(values ...int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}

// Split is the per-part display value of total divided in parts, truncated
// to the centavo. It is for display only and must never be stored.
func Split(total int64, parts int) int64 {
	if parts <= 1 {
		return total
	}
	return total / int64(parts)
}
