package syntax

import (
	"errors"
	"math"

	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/crc"
	"github.com/llehouerou/go-flac/internal/tables"
)

// SyncCode is the 15-bit frame sync pattern followed by the blocking
// strategy bit, left-aligned in 16 bits.
const SyncCode = 0xFFF8

// syncMask drops the blocking strategy bit.
const syncMask = 0xFFFE

// MaxHeaderSize is the longest possible frame header in bytes: sync and
// codes (4), sample number (7), block size (2), sample rate (2), CRC-8 (1).
const MaxHeaderSize = 16

// ChannelAssignment is the 4-bit channel layout code of a frame header.
type ChannelAssignment uint8

// Channel assignments. Codes 0-7 are 1-8 independent channels.
const (
	Mono        ChannelAssignment = 0
	Stereo      ChannelAssignment = 1
	LeftSide    ChannelAssignment = 8
	SideRight   ChannelAssignment = 9
	MidSide     ChannelAssignment = 10
	maxAssigned                   = MidSide
)

// Channels returns the channel count, or 0 for a reserved code.
func (a ChannelAssignment) Channels() int {
	switch {
	case a < LeftSide:
		return int(a) + 1
	case a <= maxAssigned:
		return 2
	}
	return 0
}

// Decorrelated reports whether the channels are stored as a stereo pair
// with a difference channel.
func (a ChannelAssignment) Decorrelated() bool {
	return a >= LeftSide && a <= maxAssigned
}

// SideChannel returns the index of the difference channel, or -1.
func (a ChannelAssignment) SideChannel() int {
	switch a {
	case LeftSide, MidSide:
		return 1
	case SideRight:
		return 0
	}
	return -1
}

func (a ChannelAssignment) String() string {
	switch a {
	case LeftSide:
		return "left/side"
	case SideRight:
		return "side/right"
	case MidSide:
		return "mid/side"
	}
	if n := a.Channels(); n > 0 {
		return "independent"
	}
	return "reserved"
}

// StreamDefaults are the STREAMINFO values a frame header may defer to.
// Zero fields are unknown.
type StreamDefaults struct {
	SampleRate uint32
	BitDepth   uint8
	Channels   int
}

// FrameHeader is a decoded frame header.
//
// Source: RFC 9639 §9.1
type FrameHeader struct {
	// Variable is the blocking strategy bit. When set, Number is the first
	// sample number of the frame, otherwise the frame number.
	Variable   bool
	BlockSize  int
	SampleRate uint32
	Assignment ChannelAssignment
	BitDepth   uint8
	Number     uint64
	CRC8       uint8

	// Size is the header length in bytes, CRC-8 included.
	Size int
}

// Channels returns the channel count.
func (h *FrameHeader) Channels() int {
	return h.Assignment.Channels()
}

// FirstSample returns the number of the first sample in the frame. For
// fixed blocking it assumes every earlier frame had blockSize samples.
func (h *FrameHeader) FirstSample(blockSize int) uint64 {
	if h.Variable {
		return h.Number
	}
	return h.Number * uint64(blockSize)
}

// ParseHeader reads a frame header at the cursor, which must be byte aligned
// on a sync code.
//
// Errors from the reader (ErrNoData and friends) are returned as is and
// leave the reader mid-header; the caller rewinds. Every other error means
// the bytes are not a valid header.
func ParseHeader(r *bits.Reader, def StreamDefaults) (FrameHeader, error) {
	var h FrameHeader
	var rawBuf [MaxHeaderSize]byte
	raw := rawBuf[:0]

	v, ok := r.ReadBits(32)
	if !ok {
		return h, r.Underrun()
	}
	raw = append(raw, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	if uint16(v>>16)&syncMask != SyncCode {
		return h, ErrSyncCode
	}
	h.Variable = v&0x10000 != 0

	bsCode := uint8(v>>12) & 0xF
	srCode := uint8(v>>8) & 0xF
	h.Assignment = ChannelAssignment(v>>4) & 0xF
	bdCode := uint8(v>>1) & 0x7
	// The last bit is reserved; RFC 9639 asks decoders to ignore it.

	switch {
	case bsCode == tables.BlockSizeReserved:
		return h, ErrReservedBlockSize
	case srCode == tables.SampleRateInvalid:
		return h, ErrInvalidSampleRate
	case h.Assignment.Channels() == 0:
		return h, ErrReservedChannels
	case tables.BitDepthReserved(bdCode):
		return h, ErrReservedBitDepth
	}

	var err error
	if h.Variable {
		h.Number, raw, err = r.ReadUTF8Uint64(raw)
		if err == nil && h.Number == math.MaxUint64 {
			err = ErrFrameNumber
		}
	} else {
		var n uint32
		n, raw, err = r.ReadUTF8Uint32(raw)
		if err == nil && n == math.MaxUint32 {
			err = ErrFrameNumber
		}
		h.Number = uint64(n)
	}
	switch {
	case errors.Is(err, bits.ErrUTF8):
		return h, ErrFrameNumber
	case err != nil:
		return h, err
	}

	bsLen := tables.BlockSizeTrailer(bsCode)
	srLen := tables.SampleRateTrailer(srCode)
	tail, ok := r.ReadBits64(uint(bsLen+srLen+1) * 8)
	if !ok {
		return h, r.Underrun()
	}
	for i := bsLen + srLen; i >= 0; i-- {
		raw = append(raw, byte(tail>>(8*uint(i))))
	}
	h.CRC8 = uint8(tail)
	srVal := uint32(tail>>8) & (1<<(8*uint(srLen)) - 1)
	bsVal := uint32(tail >> (8 * uint(srLen+1)))

	if want := crc.Checksum8(raw[:len(raw)-1]); want != h.CRC8 {
		return h, ErrHeaderCRC
	}

	h.BlockSize = tables.DecodeBlockSize(bsCode, bsVal)
	h.SampleRate = tables.DecodeSampleRate(srCode, srVal)
	if srCode == tables.SampleRateStream {
		h.SampleRate = def.SampleRate
	}
	h.BitDepth = tables.BitDepths[bdCode]
	if bdCode == tables.BitDepthStream {
		if def.BitDepth == 0 {
			return h, ErrNoBitDepth
		}
		h.BitDepth = def.BitDepth
	}
	h.Size = len(raw)
	return h, nil
}
