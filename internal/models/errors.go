package models

import "errors"

var (
	// ErrDataUnavailable - биржа вернула ошибку или пустой ответ. Живёт в пределах цикла.
	ErrDataUnavailable = errors.New("market data unavailable")

	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrInvalidOrder         = errors.New("invalid order")
)
