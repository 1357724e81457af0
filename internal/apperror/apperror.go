package apperror

import "errors"

// Business errors carry fixed user-facing messages and propagate to the
// handlers unchanged; anything else coming out of a service is a
// wrapped storage failure.
var (
	ErrCommodityNotFound   = errors.New("Commodity not found")
	ErrCommodityNameExists = errors.New("Commodity name already exists")
	ErrCommodityInUse      = errors.New("Commodity still has buy histories")

	ErrBuyHistoryNotFound  = errors.New("Buy history not found")
	ErrSellHistoryNotFound = errors.New("Sell history not found")

	ErrStockAssetNotFound = errors.New("Stock asset by commodity not found")
	ErrInsufficientStock  = errors.New("Stock asset quantity is too low for this operation")

	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid email or password")

	// ErrValidation wraps boundary rejections of malformed input so
	// handlers answer 400 rather than 500.
	ErrValidation = errors.New("Validation failed")
)

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommodityNotFound) ||
		errors.Is(err, ErrBuyHistoryNotFound) ||
		errors.Is(err, ErrSellHistoryNotFound) ||
		errors.Is(err, ErrStockAssetNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsBusiness reports whether err is an expected business outcome (a 4xx
// rather than a storage failure).
func IsBusiness(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrCommodityNameExists) ||
		errors.Is(err, ErrCommodityInUse) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrValidation)
}
