package engine

import "errors"

// Engine errors. All are local, recoverable conditions surfaced to the
// caller; the engine never retries.
var (
	// ErrInvalidOrder rejects non-positive quantities and malformed prices.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrEmptyBookSide reports a market order arriving while the opposite
	// side of the book holds no resting liquidity. Fills executed before
	// the side emptied stay committed.
	ErrEmptyBookSide = errors.New("book side is empty")

	// ErrOrderNotFound reports a cancellation target absent from both
	// sides of the book.
	ErrOrderNotFound = errors.New("order not found")
)
