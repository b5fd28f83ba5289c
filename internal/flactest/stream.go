package flactest

import (
	"bytes"

	"github.com/icza/bitio"
)

// StreamInfo holds the STREAMINFO fields written by Stream.
type StreamInfo struct {
	MinBlockSize uint16
	MaxBlockSize uint16
	MinFrameSize uint32
	MaxFrameSize uint32
	SampleRate   uint32
	Channels     uint8
	BitDepth     uint8
	TotalSamples uint64
	MD5          [16]byte
}

// Stream returns a complete FLAC stream: the signature, a STREAMINFO block,
// an 8-byte PADDING block and the given frames.
func Stream(si StreamInfo, frames ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	w := bitio.NewWriter(&buf)

	// STREAMINFO header: not last, type 0, 34 bytes.
	w.TryWriteBits(0, 1)
	w.TryWriteBits(0, 7)
	w.TryWriteBits(34, 24)
	w.TryWriteBits(uint64(si.MinBlockSize), 16)
	w.TryWriteBits(uint64(si.MaxBlockSize), 16)
	w.TryWriteBits(uint64(si.MinFrameSize), 24)
	w.TryWriteBits(uint64(si.MaxFrameSize), 24)
	w.TryWriteBits(uint64(si.SampleRate), 20)
	w.TryWriteBits(uint64(si.Channels-1), 3)
	w.TryWriteBits(uint64(si.BitDepth-1), 5)
	w.TryWriteBits(si.TotalSamples, 36)
	w.TryWrite(si.MD5[:])

	// PADDING: last, type 1, 8 zero bytes.
	w.TryWriteBits(1, 1)
	w.TryWriteBits(1, 7)
	w.TryWriteBits(8, 24)
	w.TryWrite(make([]byte, 8))
	if w.TryError != nil {
		panic(w.TryError)
	}
	w.Close()

	for _, f := range frames {
		buf.Write(f)
	}
	return buf.Bytes()
}

// ID3v2 returns an empty ID3v2.4 tag whose body is size zero bytes.
func ID3v2(size int) []byte {
	h := []byte{'I', 'D', '3', 4, 0, 0,
		byte(size >> 21 & 0x7F), byte(size >> 14 & 0x7F), byte(size >> 7 & 0x7F), byte(size & 0x7F)}
	return append(h, make([]byte, size)...)
}
