package syntax

import (
	"io"

	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/predict"
)

// SubframeType is the coding of one subframe.
type SubframeType uint8

// Subframe types.
const (
	SubframeConstant SubframeType = iota
	SubframeVerbatim
	SubframeFixed
	SubframeLPC
)

func (t SubframeType) String() string {
	switch t {
	case SubframeConstant:
		return "constant"
	case SubframeVerbatim:
		return "verbatim"
	case SubframeFixed:
		return "fixed"
	case SubframeLPC:
		return "lpc"
	}
	return "unknown"
}

// Subframe holds one channel of a frame: its header and, for predicted
// types, the predictor parameters. Samples are produced by Decode.
//
// Source: RFC 9639 §9.2
type Subframe struct {
	Type SubframeType

	// Wasted is the number of zero low bits shifted out before coding.
	Wasted uint
	// BitDepth is the coded sample size: the frame's, plus one for a side
	// channel, minus Wasted.
	BitDepth uint
	// Order is the predictor order for Fixed and LPC.
	Order int

	// Value is the sample of a Constant subframe.
	Value int64

	// LPC parameters.
	Precision uint
	Shift     uint
	Coeffs    [predict.MaxLPCOrder]int32

	warmup    [predict.MaxLPCOrder]int64
	blockSize int
	done      int
}

// MaxBitDepth is the widest channel a frame can carry: the side channel of a
// 32-bit frame.
const MaxBitDepth = 33

// ReadSubframe reads a subframe header and its predictor parameters.
// bitDepth is the channel's nominal sample size. Channels wider than 32 bits
// must be decoded with DecodeWide.
func ReadSubframe(r *bits.Reader, sf *Subframe, bitDepth uint, blockSize int) error {
	*sf = Subframe{blockSize: blockSize}

	v, ok := r.ReadBits(8)
	if !ok {
		return r.Underrun()
	}
	if v&0x80 != 0 {
		return ErrSubframePadding
	}
	code := v >> 1 & 0x3F
	switch {
	case code == 0:
		sf.Type = SubframeConstant
	case code == 1:
		sf.Type = SubframeVerbatim
	case code >= 8 && code <= 12:
		sf.Type = SubframeFixed
		sf.Order = int(code - 8)
	case code >= 32:
		sf.Type = SubframeLPC
		sf.Order = int(code - 31)
	default:
		return ErrReservedSubframe
	}

	if v&1 != 0 {
		k, ok := r.ReadUnary()
		if !ok {
			return r.Underrun()
		}
		sf.Wasted = uint(k) + 1
		if sf.Wasted >= bitDepth {
			return ErrWastedBits
		}
	}
	if bitDepth > MaxBitDepth {
		return ErrBitDepth
	}
	sf.BitDepth = bitDepth - sf.Wasted
	if sf.Order > blockSize {
		return ErrPredictorOrder
	}

	switch sf.Type {
	case SubframeConstant:
		if sf.Value, ok = r.ReadSigned64(sf.BitDepth); !ok {
			return r.Underrun()
		}
	case SubframeFixed:
		return sf.readWarmup(r)
	case SubframeLPC:
		if err := sf.readWarmup(r); err != nil {
			return err
		}
		p, ok := r.ReadBits(9)
		if !ok {
			return r.Underrun()
		}
		if p>>5 == 0xF {
			return ErrLPCPrecision
		}
		sf.Precision = uint(p>>5) + 1
		if p&0x10 != 0 {
			return ErrLPCShift
		}
		sf.Shift = uint(p & 0xF)
		for i := range sf.Order {
			if sf.Coeffs[i], ok = r.ReadSigned(sf.Precision); !ok {
				return r.Underrun()
			}
		}
	}
	return nil
}

func (sf *Subframe) readWarmup(r *bits.Reader) error {
	for i := range sf.Order {
		var ok bool
		if sf.warmup[i], ok = r.ReadSigned64(sf.BitDepth); !ok {
			return r.Underrun()
		}
	}
	return nil
}

// Wide reports whether the channel needs DecodeWide.
func (sf *Subframe) Wide() bool {
	return sf.BitDepth+sf.Wasted > 32
}

// Remaining returns how many samples Decode has yet to produce.
func (sf *Subframe) Remaining() int {
	return sf.blockSize - sf.done
}

// Decode writes the next samples of the subframe to dst and returns how
// many it wrote; 0 once the block is complete. The channel must be at most
// 32 bits wide. Constant and Verbatim
// subframes decode in pieces of any size. Fixed and LPC subframes decode
// the whole block at once, so dst must hold Remaining samples.
func (sf *Subframe) Decode(r *bits.Reader, dst []int32) (int, error) {
	if sf.Wide() {
		return 0, ErrBitDepth
	}
	n := min(len(dst), sf.Remaining())
	if n == 0 {
		return 0, nil
	}
	dst = dst[:n]

	var err error
	switch sf.Type {
	case SubframeConstant:
		sf.decodeConstant(dst)
	case SubframeVerbatim:
		err = sf.decodeVerbatim(r, dst)
	case SubframeFixed:
		err = sf.decodeFixed(r, dst)
	case SubframeLPC:
		err = sf.decodeLPC(r, dst)
	}
	if err != nil {
		return 0, err
	}
	if sf.Wasted > 0 {
		for i := range dst {
			dst[i] <<= sf.Wasted
		}
	}
	sf.done += n
	return n, nil
}

// DecodeWide is Decode for channels wider than 32 bits. res is scratch
// space for the residual of a Fixed or LPC subframe and must hold
// Remaining samples.
func (sf *Subframe) DecodeWide(r *bits.Reader, dst []int64, res []int32) (int, error) {
	n := min(len(dst), sf.Remaining())
	if n == 0 {
		return 0, nil
	}
	dst = dst[:n]

	var err error
	switch sf.Type {
	case SubframeConstant:
		for i := range dst {
			dst[i] = sf.Value
		}
	case SubframeVerbatim:
		for i := range dst {
			var ok bool
			if dst[i], ok = r.ReadSigned64(sf.BitDepth); !ok {
				return 0, r.Underrun()
			}
		}
	case SubframeFixed, SubframeLPC:
		err = sf.decodePredictedWide(r, dst, res)
	}
	if err != nil {
		return 0, err
	}
	if sf.Wasted > 0 {
		for i := range dst {
			dst[i] <<= sf.Wasted
		}
	}
	sf.done += n
	return n, nil
}

func (sf *Subframe) decodePredictedWide(r *bits.Reader, dst []int64, res []int32) error {
	if len(dst) < sf.blockSize || len(res) < sf.blockSize-sf.Order {
		return io.ErrShortBuffer
	}
	res = res[:sf.blockSize-sf.Order]
	if err := ReadResidual(r, res, sf.blockSize, sf.Order); err != nil {
		return err
	}
	copy(dst, sf.warmup[:sf.Order])
	for i, v := range res {
		dst[sf.Order+i] = int64(v)
	}
	if sf.Type == SubframeFixed {
		return predict.Fixed(dst, sf.Order)
	}
	return predict.LPC(dst, sf.Coeffs[:sf.Order], sf.Shift)
}

func (sf *Subframe) decodeConstant(dst []int32) {
	for i := range dst {
		dst[i] = int32(sf.Value)
	}
}

func (sf *Subframe) decodeVerbatim(r *bits.Reader, dst []int32) error {
	for i := range dst {
		v, ok := r.ReadSigned(sf.BitDepth)
		if !ok {
			return r.Underrun()
		}
		dst[i] = v
	}
	return nil
}

func (sf *Subframe) decodeFixed(r *bits.Reader, dst []int32) error {
	if err := sf.decodeResidual(r, dst); err != nil {
		return err
	}
	return predict.Fixed(dst, sf.Order)
}

func (sf *Subframe) decodeLPC(r *bits.Reader, dst []int32) error {
	if err := sf.decodeResidual(r, dst); err != nil {
		return err
	}
	return predict.LPC(dst, sf.Coeffs[:sf.Order], sf.Shift)
}

// decodeResidual lays out warm-up samples and residuals in dst for the
// predictor.
func (sf *Subframe) decodeResidual(r *bits.Reader, dst []int32) error {
	if len(dst) < sf.blockSize {
		return io.ErrShortBuffer
	}
	for i, v := range sf.warmup[:sf.Order] {
		dst[i] = int32(v)
	}
	return ReadResidual(r, dst[sf.Order:], sf.blockSize, sf.Order)
}
