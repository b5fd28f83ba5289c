package flac

import (
	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/output"
	"github.com/llehouerou/go-flac/internal/syntax"
)

// Error represents a stream level decoder error.
type Error int

// Error codes.
const (
	ErrNone Error = iota
	ErrNilDecoder
	ErrSignature
	ErrStreamInfo
	ErrMD5Mismatch
	ErrNoChannels
)

var errMessages = [...]string{
	"no error",
	"flac: nil decoder",
	"flac: missing fLaC signature",
	"flac: first metadata block is not STREAMINFO",
	"flac: decoded audio does not match the stream MD5",
	"flac: stream has no channels",
}

// Error implements the error interface.
func (e Error) Error() string {
	if e >= 0 && int(e) < len(errMessages) {
		return errMessages[e]
	}
	return "flac: unknown error"
}

// Errors from frame decoding, for use with errors.Is.
var (
	// ErrNoData is returned when the source has no data right now. It is
	// never sticky: call again once more data may be available.
	ErrNoData = bits.ErrNoData

	// Fatal errors found after a frame header was accepted.
	ErrFrameCRC          = syntax.ErrFrameCRC
	ErrReservedSubframe  = syntax.ErrReservedSubframe
	ErrChannelCount      = syntax.ErrChannelCount
	ErrChannelLayout     = output.ErrLayout
	ErrSubframeExhausted = syntax.ErrSubframeExhausted
	ErrBitDepth          = syntax.ErrBitDepth
	ErrPadding           = bits.ErrPadding

	// ErrLostSync is returned when Config.MaxResyncBytes is exceeded.
	ErrLostSync = syntax.ErrLostSync

	// ErrClosed is returned by a closed decoder.
	ErrClosed = syntax.ErrClosed
)
