// Package flactest writes synthetic FLAC frames and streams for tests.
//
// The writer is deliberately naive: it encodes exactly what it is told,
// including parameters a real encoder would never pick, so tests can reach
// every branch of the decoder.
package flactest

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"

	"github.com/llehouerou/go-flac/internal/crc"
)

// Kind selects the subframe coding.
type Kind uint8

// Subframe kinds.
const (
	Constant Kind = iota
	Verbatim
	Fixed
	LPC
)

// Channel assignment codes as written in the frame header.
const (
	LeftSide  = 8
	SideRight = 9
	MidSide   = 10
)

// Subframe describes one encoded channel. Samples are the values stored in
// the subframe, so for a side channel they are already the difference
// signal.
type Subframe struct {
	Kind    Kind
	Samples []int32
	// Wide replaces Samples for a side channel wider than 32 bits.
	Wide []int64

	// Order is the predictor order for Fixed and LPC.
	Order int

	// LPC parameters. Precision 0 selects 15.
	Coeffs    []int32
	Precision uint
	Shift     uint

	// Residual coding. Method 1 uses 5-bit Rice parameters. A negative
	// RiceParam selects escape partitions with EscapeBits raw bits.
	Method         uint
	PartitionOrder uint
	RiceParam      int
	EscapeBits     uint

	// Wasted low bits shared by every sample.
	Wasted uint
}

// Frame describes one frame.
type Frame struct {
	Variable   bool
	Number     uint64
	BlockSize  int
	SampleRate uint32 // 0 writes the "stream default" code
	BitDepth   uint   // 0 writes the "stream default" code
	Assignment uint8
	Subframes  []Subframe

	// StreamBitDepth is used for subframe widths when BitDepth is 0.
	StreamBitDepth uint
}

var blockSizeCodes = map[int]uint8{
	192: 1, 576: 2, 1152: 3, 2304: 4, 4608: 5,
	256: 8, 512: 9, 1024: 10, 2048: 11, 4096: 12, 8192: 13, 16384: 14, 32768: 15,
}

var sampleRateCodes = map[uint32]uint8{
	88200: 1, 176400: 2, 192000: 3, 8000: 4, 16000: 5, 22050: 6,
	24000: 7, 32000: 8, 44100: 9, 48000: 10, 96000: 11,
}

var bitDepthCodes = map[uint]uint8{8: 1, 12: 2, 16: 4, 20: 5, 24: 6, 32: 7}

// AppendUTF8 appends v in the UTF-8 style variable-length coding.
func AppendUTF8(dst []byte, v uint64) []byte {
	if v < 0x80 {
		return append(dst, byte(v))
	}
	n := 2
	for n < 7 && v >= 1<<(5*n+1) {
		n++
	}
	lead := byte(0xFF << (8 - n))
	dst = append(dst, lead|byte(v>>(6*(n-1))))
	for i := n - 2; i >= 0; i-- {
		dst = append(dst, 0x80|byte(v>>(6*i))&0x3F)
	}
	return dst
}

// Header returns the frame header bytes including the CRC-8.
func (f *Frame) Header() []byte {
	h := []byte{0xFF, 0xF8}
	if f.Variable {
		h[1] |= 1
	}

	var tail []byte
	bs, ok := blockSizeCodes[f.BlockSize]
	switch {
	case ok:
	case f.BlockSize <= 256:
		bs = 6
		tail = append(tail, byte(f.BlockSize-1))
	default:
		bs = 7
		tail = append(tail, byte((f.BlockSize-1)>>8), byte(f.BlockSize-1))
	}

	sr, ok := sampleRateCodes[f.SampleRate]
	switch {
	case f.SampleRate == 0 || ok:
	case f.SampleRate%1000 == 0 && f.SampleRate/1000 <= 255:
		sr = 12
		tail = append(tail, byte(f.SampleRate/1000))
	case f.SampleRate <= 0xFFFF:
		sr = 13
		tail = append(tail, byte(f.SampleRate>>8), byte(f.SampleRate))
	default:
		sr = 14
		tail = append(tail, byte(f.SampleRate/10>>8), byte(f.SampleRate/10))
	}

	bd := bitDepthCodes[f.BitDepth]
	h = append(h, bs<<4|sr, f.Assignment<<4|bd<<1)
	h = AppendUTF8(h, f.Number)
	h = append(h, tail...)
	return append(h, crc.Checksum8(h))
}

// Bytes encodes the whole frame, footer CRC-16 included.
func (f *Frame) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(f.Header())
	w := bitio.NewWriter(&buf)
	depth := f.BitDepth
	if depth == 0 {
		depth = f.StreamBitDepth
	}
	for ch, sf := range f.Subframes {
		d := depth
		if isSide(f.Assignment, ch) {
			d++
		}
		if err := writeSubframe(w, &sf, d, f.BlockSize); err != nil {
			return nil, fmt.Errorf("subframe %d: %w", ch, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	p := buf.Bytes()
	c := crc.Checksum16(p)
	return append(p, byte(c>>8), byte(c)), nil
}

// MustBytes is Bytes for fixtures known to be valid.
func (f *Frame) MustBytes() []byte {
	p, err := f.Bytes()
	if err != nil {
		panic(err)
	}
	return p
}

func isSide(assignment uint8, ch int) bool {
	switch assignment {
	case LeftSide, MidSide:
		return ch == 1
	case SideRight:
		return ch == 0
	}
	return false
}

func writeSubframe(w *bitio.Writer, sf *Subframe, depth uint, blockSize int) error {
	s := sf.Wide
	if s == nil {
		s = make([]int64, len(sf.Samples))
		for i, v := range sf.Samples {
			s[i] = int64(v)
		}
	}
	if len(s) != blockSize {
		return fmt.Errorf("have %d samples, block size %d", len(s), blockSize)
	}
	if sf.Wasted > 0 {
		shifted := make([]int64, len(s))
		for i, v := range s {
			shifted[i] = v >> sf.Wasted
		}
		s = shifted
		depth -= sf.Wasted
	}

	var typ uint64
	switch sf.Kind {
	case Constant:
		typ = 0
	case Verbatim:
		typ = 1
	case Fixed:
		typ = 8 + uint64(sf.Order)
	case LPC:
		typ = 31 + uint64(sf.Order)
	}
	var wasted uint64
	if sf.Wasted > 0 {
		wasted = 1
	}
	w.TryWriteBits(typ<<1|wasted, 8)
	if sf.Wasted > 0 {
		for range sf.Wasted - 1 {
			w.TryWriteBool(false)
		}
		w.TryWriteBool(true)
	}

	var err error
	switch sf.Kind {
	case Constant:
		w.TryWriteBits(uint64(s[0]), uint8(depth))
	case Verbatim:
		for _, v := range s {
			w.TryWriteBits(uint64(v), uint8(depth))
		}
	case Fixed:
		for _, v := range s[:sf.Order] {
			w.TryWriteBits(uint64(v), uint8(depth))
		}
		err = writeResidual(w, sf, FixedResidual(s, sf.Order))
	case LPC:
		prec := sf.Precision
		if prec == 0 {
			prec = 15
		}
		for _, v := range s[:sf.Order] {
			w.TryWriteBits(uint64(v), uint8(depth))
		}
		w.TryWriteBits(uint64(prec-1), 4)
		w.TryWriteBits(uint64(sf.Shift), 5)
		for _, c := range sf.Coeffs {
			w.TryWriteBits(uint64(c), uint8(prec))
		}
		err = writeResidual(w, sf, LPCResidual(s, sf.Coeffs, sf.Shift))
	}
	if err != nil {
		return err
	}
	return w.TryError
}

// Ramp returns n deterministic samples within ±amp.
func Ramp(n int, amp int32, seed int) []int32 {
	s := make([]int32, n)
	m := int64(2*amp + 1)
	for i := range s {
		x := int64(i+seed)*int64(i+3*seed+1)*7 + int64(i)*13
		s[i] = int32(x%m) - amp
	}
	return s
}

// MidSideOf returns the mid and side channels stored for left and right.
func MidSideOf(left, right []int32) (mid, side []int32) {
	mid = make([]int32, len(left))
	side = make([]int32, len(left))
	for i := range left {
		mid[i] = int32((int64(left[i]) + int64(right[i])) >> 1)
		side[i] = left[i] - right[i]
	}
	return mid, side
}

// WideDifference returns a - b sample by sample without overflow, for the
// side channel of a 32-bit frame.
func WideDifference(a, b []int32) []int64 {
	d := make([]int64, len(a))
	for i := range a {
		d[i] = int64(a[i]) - int64(b[i])
	}
	return d
}

// Difference returns a - b sample by sample.
func Difference(a, b []int32) []int32 {
	d := make([]int32, len(a))
	for i := range a {
		d[i] = a[i] - b[i]
	}
	return d
}
