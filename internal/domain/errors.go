package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPayment  = errors.New("invalid payment reference")
	ErrPaymentDeclined = errors.New("payment declined")
)
