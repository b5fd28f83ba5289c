// Package syntax implements FLAC frame syntax parsing: frame
// synchronisation, the frame header, subframes and residual coding.
package syntax

import "errors"

// Frame header errors. A header failing any of these is treated as a false
// sync code and the search resumes one byte later.
var (
	// ErrSyncCode indicates the bytes at the cursor are not a sync code.
	ErrSyncCode = errors.New("syntax: invalid sync code")

	// ErrReservedBlockSize indicates block size code 0.
	ErrReservedBlockSize = errors.New("syntax: reserved block size code")

	// ErrInvalidSampleRate indicates sample rate code 15.
	ErrInvalidSampleRate = errors.New("syntax: invalid sample rate code")

	// ErrReservedChannels indicates a channel assignment of 11-15.
	ErrReservedChannels = errors.New("syntax: reserved channel assignment")

	// ErrReservedBitDepth indicates sample size code 3.
	ErrReservedBitDepth = errors.New("syntax: reserved sample size code")

	// ErrNoBitDepth indicates a header deferring to a stream bit depth that
	// is unknown.
	ErrNoBitDepth = errors.New("syntax: bit depth unknown")

	// ErrFrameNumber indicates an invalid UTF-8 coded frame or sample number.
	ErrFrameNumber = errors.New("syntax: invalid frame or sample number")

	// ErrHeaderCRC indicates a frame header CRC-8 mismatch.
	ErrHeaderCRC = errors.New("syntax: frame header CRC-8 mismatch")
)

// Subframe errors. These are fatal for the stream.
var (
	// ErrSubframePadding indicates the subframe header's zero bit is set.
	ErrSubframePadding = errors.New("syntax: subframe padding bit set")

	// ErrReservedSubframe indicates a reserved subframe type code.
	ErrReservedSubframe = errors.New("syntax: reserved subframe type")

	// ErrWastedBits indicates a wasted-bits count not below the sample size.
	ErrWastedBits = errors.New("syntax: wasted bits exceed sample size")

	// ErrBitDepth indicates a channel wider than 33 bits, or a 33-bit
	// channel decoded into 32-bit samples.
	ErrBitDepth = errors.New("syntax: unsupported sample size")

	// ErrPredictorOrder indicates a predictor order above the block size.
	ErrPredictorOrder = errors.New("syntax: predictor order exceeds block size")

	// ErrLPCPrecision indicates coefficient precision code 15.
	ErrLPCPrecision = errors.New("syntax: invalid LPC coefficient precision")

	// ErrLPCShift indicates a negative LPC shift.
	ErrLPCShift = errors.New("syntax: negative LPC shift")

	// ErrSubframeExhausted indicates a subframe produced fewer samples than
	// the block size.
	ErrSubframeExhausted = errors.New("syntax: subframe exhausted before end of block")
)

// Residual errors.
var (
	// ErrResidualMethod indicates a reserved residual coding method.
	ErrResidualMethod = errors.New("syntax: reserved residual coding method")

	// ErrPartitionOrder indicates a partition order the block size cannot
	// be split by.
	ErrPartitionOrder = errors.New("syntax: invalid residual partition order")
)

// Frame errors. These are fatal for the stream.
var (
	// ErrFrameCRC indicates a frame footer CRC-16 mismatch.
	ErrFrameCRC = errors.New("syntax: frame CRC-16 mismatch")

	// ErrChannelCount indicates a frame whose channel count differs from
	// the stream's.
	ErrChannelCount = errors.New("syntax: frame channel count differs from stream")

	// ErrLostSync indicates the resync limit was exceeded.
	ErrLostSync = errors.New("syntax: no frame found within resync limit")

	// ErrClosed indicates use of a closed Synchronizer.
	ErrClosed = errors.New("syntax: synchronizer closed")
)
