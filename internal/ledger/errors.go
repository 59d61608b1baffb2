package ledger

import "errors"

var (
	// ErrBlankName is returned when a participant or item name is empty after trimming.
	ErrBlankName = errors.New("name must not be blank")

	// ErrInvalidPrice is returned for a price that is not a positive number.
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrInvalidQuantity is returned for a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNegativeRate is returned for a negative tax or service rate.
	ErrNegativeRate = errors.New("rate must not be negative")

	// ErrOwnerProtected is returned when removing the bill owner.
	ErrOwnerProtected = errors.New("bill owner cannot be removed")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrBlankName) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNegativeRate) ||
		errors.Is(err, ErrOwnerProtected)
}
