package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// payPattern matches "$80k-$100k", "$90,000 to $120,000" and similar. Commas
// are removed before matching.
var payPattern = regexp.MustCompile(`(?i)\$\s*(\d{2,3})(?:k|,?\d{3})?\s*(?:-|to)\s*\$\s*(\d{2,3})(?:k|,?\d{3})?`)

// Pay is an extracted salary range.
type Pay struct {
	Min      int64
	Max      int64
	Currency string
}

// ExtractPay finds the first dollar range in text. Each bound is read from
// its leading two or three digits and always scaled by 1000, so "$800-$1000"
// yields 800000 and 100000.
func ExtractPay(text string) (Pay, bool) {
	m := payPattern.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if m == nil {
		return Pay{}, false
	}
	return Pay{
		Min:      scaleThousands(m[1]),
		Max:      scaleThousands(m[2]),
		Currency: "USD",
	}, true
}

func scaleThousands(digits string) int64 {
	v, _ := strconv.ParseInt(digits, 10, 64)
	if len(digits) <= 3 {
		return v * 1000
	}
	return v
}
