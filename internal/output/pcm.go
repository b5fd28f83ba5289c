// Package output turns decoded channels into interleaved PCM.
//
// Source: RFC 9639 §9.1.3 (channel assignment), §10.2 (MD5 sample layout)
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/llehouerou/go-flac/internal/syntax"
)

// ErrLayout is returned for a channel assignment that does not match the
// channels handed in.
var ErrLayout = errors.New("output: unsupported channel layout")

// Reconstruct undoes stereo decorrelation and writes n samples per channel
// from chans to dst, interleaved. chans holds the channels as stored in the
// frame; they are not modified. It returns the number of values written.
func Reconstruct(dst []int32, a syntax.ChannelAssignment, chans [][]int32, n int) (int, error) {
	if len(chans) == 0 || len(chans) > syntax.MaxChannels || a.Channels() != len(chans) {
		return 0, fmt.Errorf("%w: %s with %d channels", ErrLayout, a, len(chans))
	}
	for _, c := range chans {
		if len(c) < n {
			return 0, fmt.Errorf("%w: channel holds %d of %d samples", ErrLayout, len(c), n)
		}
	}
	total := n * len(chans)
	if len(dst) < total {
		return 0, io.ErrShortBuffer
	}
	dst = dst[:total]

	switch a {
	case syntax.LeftSide:
		leftSide(dst, chans[0][:n], chans[1][:n])
	case syntax.SideRight:
		sideRight(dst, chans[0][:n], chans[1][:n])
	case syntax.MidSide:
		midSide(dst, chans[0][:n], chans[1][:n])
	default:
		Interleave(dst, chans, n)
	}
	return total, nil
}

// ReconstructWide is Reconstruct for a stereo frame whose side channel is
// 33 bits wide. other is the stored channel that is not the side channel.
func ReconstructWide(dst []int32, a syntax.ChannelAssignment, other []int32, side []int64, n int) (int, error) {
	if !a.Decorrelated() {
		return 0, fmt.Errorf("%w: %s has no side channel", ErrLayout, a)
	}
	if len(other) < n || len(side) < n {
		return 0, fmt.Errorf("%w: channels hold %d and %d of %d samples", ErrLayout, len(other), len(side), n)
	}
	if len(dst) < 2*n {
		return 0, io.ErrShortBuffer
	}
	switch a {
	case syntax.LeftSide:
		leftSide(dst, other[:n], side[:n])
	case syntax.SideRight:
		sideRight(dst, side[:n], other[:n])
	default:
		midSide(dst, other[:n], side[:n])
	}
	return 2 * n, nil
}

// Interleave writes n samples of each channel to dst in frame order.
func Interleave(dst []int32, chans [][]int32, n int) {
	switch len(chans) {
	case 1:
		copy(dst[:n], chans[0][:n])
	case 2:
		interleave2(dst, chans[0][:n], chans[1][:n])
	default:
		interleaveN(dst, chans, n)
	}
}

func interleave2(dst, l, r []int32) {
	dst = dst[:2*len(l)]
	for i := range l {
		dst[2*i] = l[i]
		dst[2*i+1] = r[i]
	}
}

func interleaveN(dst []int32, chans [][]int32, n int) {
	stride := len(chans)
	for ch, c := range chans {
		c = c[:n]
		for i, v := range c {
			dst[i*stride+ch] = v
		}
	}
}

// sideSample is a stored difference channel: int32, or int64 when it is the
// 33-bit side channel of a 32-bit frame.
type sideSample interface{ ~int32 | ~int64 }

func leftSide[S sideSample](dst, left []int32, side []S) {
	dst = dst[:2*len(left)]
	for i := range left {
		dst[2*i] = left[i]
		dst[2*i+1] = int32(int64(left[i]) - int64(side[i]))
	}
}

func sideRight[S sideSample](dst []int32, side []S, right []int32) {
	dst = dst[:2*len(side)]
	for i := range side {
		dst[2*i] = int32(int64(right[i]) + int64(side[i]))
		dst[2*i+1] = right[i]
	}
}

func midSide[S sideSample](dst, mid []int32, side []S) {
	dst = dst[:2*len(mid)]
	for i := range mid {
		s := int64(side[i])
		m := int64(mid[i])<<1 | s&1
		dst[2*i] = int32((m + s) >> 1)
		dst[2*i+1] = int32((m - s) >> 1)
	}
}

// BytesPerSample is the width of one packed sample for a bit depth.
func BytesPerSample(bitDepth uint) int {
	return int(bitDepth+7) / 8
}

// AppendLE appends samples as signed little-endian integers of
// BytesPerSample(bitDepth) bytes each. This is the layout the stream MD5 is
// computed over.
func AppendLE(dst []byte, samples []int32, bitDepth uint) []byte {
	switch BytesPerSample(bitDepth) {
	case 1:
		for _, v := range samples {
			dst = append(dst, byte(v))
		}
	case 2:
		for _, v := range samples {
			dst = append(dst, byte(v), byte(v>>8))
		}
	case 3:
		for _, v := range samples {
			dst = append(dst, byte(v), byte(v>>8), byte(v>>16))
		}
	default:
		for _, v := range samples {
			dst = append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	}
	return dst
}
