package listing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scubahq/tradevault/internal/domain"
)

// Prices are free text, not strict numbers: "$150", "250m OSRS GP", "1,500k"
// are all fine. The grammar is a numeric core with optional currency symbol,
// decimal part, k/m/b multiplier and trailing unit words.
var priceRe = regexp.MustCompile(`(?i)^\s*[$€£]?\s*\d[\d,]*(\.\d+)?\s*[kmb]?(\s+[a-z][a-z ]*[a-z])?\s*$`)

var firstNumberRe = regexp.MustCompile(`\d+`)

// ValidatePrice checks a price string against the listing grammar.
func ValidatePrice(price string) error {
	if !priceRe.MatchString(price) {
		return fmt.Errorf("%w: price %q needs a numeric amount, e.g. \"$150\" or \"250m GP\"", domain.ErrValidation, price)
	}
	return nil
}

// PriceValue extracts the leading numeric component of a price string for
// rough sorting. "250m OSRS GP" yields 250; malformed strings yield 0.
func PriceValue(price string) int64 {
	cleaned := strings.ReplaceAll(strings.ToLower(price), ",", "")
	m := firstNumberRe.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
