package flac

import (
	"log/slog"

	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/syntax"
)

// ChannelAssignment is the channel layout of a frame.
// Source: RFC 9639 §9.1.3
type ChannelAssignment = syntax.ChannelAssignment

// Channel assignments. Codes 0-7 are independent channels, 1 to 8 of them.
const (
	Mono      = syntax.Mono
	Stereo    = syntax.Stereo
	LeftSide  = syntax.LeftSide  // left, side
	SideRight = syntax.SideRight // side, right
	MidSide   = syntax.MidSide   // mid, side
)

// MaxChannels is the most channels a stream can carry.
const MaxChannels = syntax.MaxChannels

// StreamInfo holds the STREAMINFO metadata block.
// Source: RFC 9639 §8.2
type StreamInfo struct {
	MinBlockSize uint16
	MaxBlockSize uint16
	MinFrameSize uint32 // 0 if unknown
	MaxFrameSize uint32 // 0 if unknown
	SampleRate   uint32
	Channels     uint8
	BitDepth     uint8
	TotalSamples uint64 // per channel, 0 if unknown

	// MD5 of the decoded samples; all zero if the encoder did not compute it.
	MD5 [16]byte
}

func (si *StreamInfo) defaults() syntax.StreamDefaults {
	return syntax.StreamDefaults{
		SampleRate: si.SampleRate,
		BitDepth:   si.BitDepth,
		Channels:   int(si.Channels),
	}
}

// Config contains decoder configuration options.
type Config struct {
	// VerifyMD5 checks the decoded samples against StreamInfo.MD5 when the
	// stream ends. A mismatch is reported instead of io.EOF.
	VerifyMD5 bool
	// Logger receives debug events: resynchronization, rejected headers and
	// decoded frames. Nil discards.
	Logger *slog.Logger
	// BufferSize is the initial capacity of the bit reader in bytes.
	BufferSize int
	// MaxResyncBytes bounds the bytes skipped while looking for one frame.
	// 0 means no bound.
	MaxResyncBytes int
}

// DefaultConfig returns the configuration used by NewDecoder.
func DefaultConfig() Config {
	return Config{
		VerifyMD5:  true,
		BufferSize: bits.DefaultBufferSize,
	}
}

// FrameInfo describes a decoded frame.
type FrameInfo struct {
	// Number is the frame number for fixed blocking streams and the number
	// of the first sample for variable blocking ones.
	Number   uint64
	Variable bool
	// FirstSample is the stream position of the frame's first sample.
	FirstSample uint64

	BlockSize  int
	SampleRate uint32
	BitDepth   uint8
	Channels   int
	Assignment ChannelAssignment

	// Offset is the position of the frame in the audio data, in bytes from
	// the first frame (or from the start of a raw stream).
	Offset uint64
	// Size is the frame length in bytes.
	Size int
	// SkippedBytes counts bytes discarded while searching for this frame.
	SkippedBytes int
	CRC16        uint16
}
