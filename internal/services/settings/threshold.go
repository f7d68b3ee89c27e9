package settings

import (
	"strings"

	"github.com/shopspring/decimal"

	"rektbot/pkg/errors"
)

var thousand = decimal.NewFromInt(1000)

// ParseThreshold turns free-form subscriber input into a notional volume
// threshold in quote currency.
//
// Deployed variants taught users two shorthand conventions, and both are
// honored: an explicit trailing "k" always multiplies by 1,000, and a bare
// number under 1,000 is read as thousands ("15" means 15,000). A bare number
// of 1,000 or more is taken as-is, so the rule is idempotent: re-parsing a
// normalized value never multiplies again.
func ParseThreshold(input string) (decimal.Decimal, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, " ", "")

	if text == "" {
		return decimal.Zero, errors.Wrap(errors.ErrInvalidInput, "empty threshold")
	}

	inThousands := false
	if strings.HasSuffix(text, "k") {
		inThousands = true
		text = strings.TrimSuffix(text, "k")
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrInvalidInput, "not a number: %q", input)
	}
	if !value.IsPositive() {
		return decimal.Zero, errors.Wrapf(errors.ErrInvalidInput, "threshold must be positive: %q", input)
	}

	if inThousands || value.LessThan(thousand) {
		value = value.Mul(thousand)
	}

	return value, nil
}
