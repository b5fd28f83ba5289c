package bits

import "errors"

// Sentinel errors returned by the Reader.
var (
	// ErrNoData means the source has no bytes available right now. The read
	// did not consume anything and may be retried once more input arrives.
	ErrNoData = errors.New("bits: no data available")

	// ErrUTF8 is returned for a malformed UTF-8 coded number.
	ErrUTF8 = errors.New("bits: invalid UTF-8 coded number")

	// ErrPadding is returned when byte-alignment padding has a set bit.
	ErrPadding = errors.New("bits: non-zero padding")
)
