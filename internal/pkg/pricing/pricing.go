package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownModel is returned for a pricing model outside the known set.
// The legacy behavior of quoting zero for unknown models hid client bugs,
// so quoting now fails instead.
var ErrUnknownModel = errors.New("unknown pricing model")

const (
	// ModelPerPage charges 30 cents per page.
	ModelPerPage = 1
	// ModelPerCharBlock charges 80 cents per 1860 characters.
	ModelPerCharBlock = 2
)

var (
	perPageRate   = decimal.RequireFromString("0.30")
	perBlockRate  = decimal.RequireFromString("0.80")
	charBlockSize = decimal.NewFromInt(1860)
)

// Cost returns the translation price in USD for the given pricing model and
// document metrics, rounded half-up to cents. Pure function.
func Cost(model, pages, chars int) (decimal.Decimal, error) {
	switch model {
	case ModelPerPage:
		return perPageRate.Mul(decimal.NewFromInt(int64(pages))).Round(2), nil
	case ModelPerCharBlock:
		return perBlockRate.Mul(decimal.NewFromInt(int64(chars))).Div(charBlockSize).Round(2), nil
	default:
		return decimal.Zero, ErrUnknownModel
	}
}
