package service

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrMissingContactInfo = errors.New("name, phone and email are required")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")
	ErrProofNotExpected   = errors.New("order is not awaiting a payment proof")
	ErrUnsupportedImage   = errors.New("payment proof must be a jpg, png or webp image")
)
