package domain

import "errors"

var (
	ErrRateNotFound     = errors.New("rate not found")
	ErrNoRatesAvailable = errors.New("no rates available")
)
