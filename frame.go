package flac

import "github.com/llehouerou/go-flac/internal/pool"

// Frame is a decoded frame: its interleaved samples and a read cursor.
//
// A Frame is owned by the Decoder that returned it and stays valid until
// the next call to NextFrame, Read or Close.
type Frame struct {
	FrameInfo

	samples []int32
	pos     int
}

// Samples returns all samples of the frame, interleaved. Side channels are
// already undone.
func (f *Frame) Samples() []int32 {
	return f.samples
}

// Channel copies the samples of one channel to dst, which must hold
// BlockSize values, and returns dst.
func (f *Frame) Channel(dst []int32, ch int) []int32 {
	dst = dst[:f.BlockSize]
	for i := range dst {
		dst[i] = f.samples[i*f.Channels+ch]
	}
	return dst
}

// Remaining returns how many values Read has yet to hand out.
func (f *Frame) Remaining() int {
	return len(f.samples) - f.pos
}

// Read copies whole interleaved samples to dst and returns the number of
// values copied, a multiple of Channels.
func (f *Frame) Read(dst []int32) int {
	n := min(len(dst), f.Remaining())
	n -= n % f.Channels
	copy(dst, f.samples[f.pos:f.pos+n])
	f.pos += n
	return n
}

func (f *Frame) release() {
	pool.Put(f.samples)
	f.samples = nil
	f.pos = 0
}
