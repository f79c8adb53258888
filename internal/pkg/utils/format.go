package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FormatUSD renders a fiat amount as "$1,234.50".
func FormatUSD(v float64) string {
	return "$" + groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

// FormatCount renders an integer count with thousands separators.
func FormatCount(n int64) string {
	return groupThousands(strconv.FormatInt(n, 10))
}

// FormatNativeAmount renders a natural-unit amount with four decimals and the
// chain's symbol, e.g. "2.5000 ETH".
func FormatNativeAmount(amount decimal.Decimal, symbol string) string {
	formatted := groupThousands(amount.StringFixed(4))
	if symbol == "" {
		return formatted
	}
	return formatted + " " + symbol
}

// FormatWalletAge buckets a wallet age in days into days, months or years.
func FormatWalletAge(days int64) string {
	switch {
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		return fmt.Sprintf("%d months, %d days", days/30, days%30)
	default:
		return fmt.Sprintf("%d years, %d months", days/365, (days%365)/30)
	}
}

// YesNo renders a classification flag.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// groupThousands inserts comma separators into the integer part of a plain
// decimal string such as "-1234567.89".
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return sign + b.String()
}
