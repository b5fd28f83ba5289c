package bits

import (
	"encoding/binary"
	"io"
	"math/bits"
	"sync/atomic"

	"github.com/llehouerou/go-flac/internal/crc"
)

// DefaultBufferSize is the initial buffer capacity in bytes.
const DefaultBufferSize = 64 << 10

const minBufferSize = 64

// Reader presents a pull-based byte source as a bit-addressable stream.
//
// Input is kept as big-endian 64-bit words so any field up to 64 bits is at
// most two words away. Consumed words are compacted out of the buffer when
// more input is needed, so the buffer is a sliding window over the stream
// rather than a cap on its length.
//
// Reads are all-or-nothing: a read that cannot be satisfied from buffered
// input plus whatever the source returns now leaves the cursor unchanged.
// Underrun reports why.
//
// The Reader also owns the running CRC-16 of consumed bytes; see CRC16.
type Reader struct {
	src io.Reader

	// words[avail] holds tail bytes of a partial word, left-aligned.
	words []uint64
	raw   []byte
	avail int
	tail  int

	pos  int  // word index of the cursor
	bit  uint // bit offset inside words[pos]
	base uint64

	crc   uint16
	crcAt uint64 // absolute byte offset folded into crc

	marked    bool
	markAt    uint64
	markCRC   uint16
	markCRCAt uint64

	eos    atomic.Bool
	err    error
	closed bool
}

// NewReader returns a Reader pulling from src with an initial buffer of
// size bytes. A size below 64 selects DefaultBufferSize.
//
// src may return (0, nil) to signal that no data is available right now; the
// pending read then fails with ErrNoData instead of blocking.
func NewReader(src io.Reader, size int) *Reader {
	if size < minBufferSize {
		size = DefaultBufferSize
	}
	nw := (size + 7) / 8
	return &Reader{
		src:   src,
		words: make([]uint64, nw+1),
		raw:   make([]byte, nw*8),
	}
}

// ConsumedBits returns the number of bits consumed since the start of the
// stream.
func (r *Reader) ConsumedBits() uint64 {
	return r.base + uint64(r.pos)*64 + uint64(r.bit)
}

// BufferedBits returns the number of bits buffered past the cursor.
func (r *Reader) BufferedBits() uint64 {
	return uint64(r.avail)*64 + uint64(r.tail)*8 - uint64(r.pos)*64 - uint64(r.bit)
}

// EndOfStream reports whether the source has returned io.EOF. Bits may
// still be buffered. The flag never resets and is safe to read from any
// goroutine.
func (r *Reader) EndOfStream() bool {
	return r.eos.Load()
}

// Err returns the first non-EOF error returned by the source.
func (r *Reader) Err() error {
	return r.err
}

// Underrun explains why the last read failed: the source error, if any,
// io.ErrUnexpectedEOF once the source is exhausted, and ErrNoData otherwise.
func (r *Reader) Underrun() error {
	switch {
	case r.err != nil:
		return r.err
	case r.eos.Load():
		return io.ErrUnexpectedEOF
	}
	return ErrNoData
}

// IsByteAligned reports whether the cursor sits on a byte boundary.
func (r *Reader) IsByteAligned() bool {
	return r.bit&7 == 0
}

// Ensure makes at least n bits available past the cursor, pulling from the
// source as needed.
func (r *Reader) Ensure(n uint64) bool {
	for r.BufferedBits() < n {
		if !r.refill(n) {
			return false
		}
	}
	return true
}

// PeekBits returns the next n bits without consuming them. n must be 0-32.
func (r *Reader) PeekBits(n uint) (uint32, bool) {
	checkWidth(n, 32)
	if !r.Ensure(uint64(n)) {
		return 0, false
	}
	return uint32(r.peek(n)), true
}

// ReadBits reads n bits as an unsigned big-endian value. n must be 0-32.
func (r *Reader) ReadBits(n uint) (uint32, bool) {
	checkWidth(n, 32)
	if !r.Ensure(uint64(n)) {
		return 0, false
	}
	v := r.peek(n)
	r.advance(uint64(n))
	return uint32(v), true
}

// ReadBits64 reads n bits as an unsigned big-endian value. n must be 0-64.
func (r *Reader) ReadBits64(n uint) (uint64, bool) {
	checkWidth(n, 64)
	if !r.Ensure(uint64(n)) {
		return 0, false
	}
	v := r.peek(n)
	r.advance(uint64(n))
	return v, true
}

// ReadSigned reads n bits as a two's complement value. n must be 0-32.
func (r *Reader) ReadSigned(n uint) (int32, bool) {
	v, ok := r.ReadBits(n)
	if !ok || n == 0 {
		return 0, ok
	}
	s := 32 - n
	return int32(v<<s) >> s, true
}

// ReadSigned64 reads n bits as a two's complement value. n must be 0-64.
func (r *Reader) ReadSigned64(n uint) (int64, bool) {
	v, ok := r.ReadBits64(n)
	if !ok || n == 0 {
		return 0, ok
	}
	s := 64 - n
	return int64(v<<s) >> s, true
}

// ReadUint8 reads 8 bits at any alignment.
func (r *Reader) ReadUint8() (uint8, bool) {
	if r.BufferedBits() < 8 && !r.Ensure(8) {
		return 0, false
	}
	v := r.peek(8)
	r.advance(8)
	return uint8(v), true
}

// ReadUnary counts 0 bits up to the next 1 bit and consumes both. The
// terminating 1 is not counted.
func (r *Reader) ReadUnary() (uint32, bool) {
	for {
		n, found := r.scanZeros()
		if found {
			r.advance(n + 1)
			return uint32(n), true
		}
		if !r.refill(n + 1) {
			return 0, false
		}
	}
}

// ReadZeroPadding consumes bits up to the next byte boundary. They must all
// be zero.
func (r *Reader) ReadZeroPadding() error {
	n := (8 - r.bit&7) & 7
	if n == 0 {
		return nil
	}
	v, ok := r.ReadBits(n)
	if !ok {
		return r.Underrun()
	}
	if v != 0 {
		return ErrPadding
	}
	return nil
}

// SkipBits consumes n bits without adding them to the CRC-16. The CRC is
// kept per byte: a byte is covered once any of its bits is read, so only the
// bytes lying wholly inside the skipped span are left out.
func (r *Reader) SkipBits(n uint64) bool {
	if !r.Ensure(n) {
		return false
	}
	r.UpdateCRC16()
	if at := r.ConsumedBits(); at%8 != 0 && r.crcAt == at/8 {
		r.crc = crc.UpdateByte16(r.crc, r.byteAt(r.crcAt))
		r.crcAt++
	}
	r.advance(n)
	if at := r.ConsumedBits() / 8; at > r.crcAt {
		r.crcAt = at
	}
	return true
}

// SkipBytes consumes n bytes without adding them to the CRC-16.
func (r *Reader) SkipBytes(n int) bool {
	return r.SkipBits(uint64(n) * 8)
}

// Mark records the cursor and CRC state for a later Rewind. While a mark is
// set, compaction keeps everything from the marked word on.
func (r *Reader) Mark() {
	r.UpdateCRC16()
	r.marked = true
	r.markAt = r.ConsumedBits()
	r.markCRC = r.crc
	r.markCRCAt = r.crcAt
}

// Rewind moves the cursor and CRC state back to the mark. The mark stays set.
func (r *Reader) Rewind() {
	if !r.marked {
		panic("bits: Rewind without Mark")
	}
	rel := r.markAt - r.base
	r.pos = int(rel / 64)
	r.bit = uint(rel % 64)
	r.crc = r.markCRC
	r.crcAt = r.markCRCAt
}

// Unmark clears the mark.
func (r *Reader) Unmark() {
	r.marked = false
}

// Close releases the buffer. Any later read panics.
func (r *Reader) Close() error {
	r.closed = true
	r.words, r.raw = nil, nil
	r.avail, r.tail, r.pos, r.bit = 0, 0, 0, 0
	r.marked = false
	return nil
}

func checkWidth(n, limit uint) {
	if n > limit {
		panic("bits: invalid bit width")
	}
}

// peek returns the next n bits, 0 <= n <= 64. The caller guarantees they are
// buffered.
func (r *Reader) peek(n uint) uint64 {
	if n == 0 {
		return 0
	}
	w := r.words[r.pos] << r.bit
	if r.bit+n > 64 {
		w |= r.words[r.pos+1] >> (64 - r.bit)
	}
	return w >> (64 - n)
}

func (r *Reader) advance(n uint64) {
	c := uint64(r.bit) + n
	r.pos += int(c >> 6)
	r.bit = uint(c & 63)
}

// scanZeros counts buffered 0 bits from the cursor. found reports whether a
// 1 bit ends the run inside the buffer.
func (r *Reader) scanZeros() (n uint64, found bool) {
	p, b := r.pos, int(r.bit)
	for p <= r.avail {
		valid := 64
		if p == r.avail {
			valid = r.tail * 8
		}
		if b < valid {
			lz := bits.LeadingZeros64(r.words[p] << uint(b))
			if lz < valid-b {
				return n + uint64(lz), true
			}
			n += uint64(valid - b)
		}
		p++
		b = 0
	}
	return n, false
}

// refill pulls one chunk from the source, making room for need bits past the
// cursor first. It returns false when no bytes arrived.
func (r *Reader) refill(need uint64) bool {
	if r.closed {
		panic("bits: use of closed Reader")
	}
	if r.err != nil || r.eos.Load() {
		return false
	}
	r.compact()

	want := int((uint64(r.pos)*64 + uint64(r.bit) + need + 63) / 64)
	if want <= r.avail {
		want = r.avail + 1
	}
	if want > len(r.words)-1 {
		r.grow(want)
	}

	free := (len(r.words)-1-r.avail)*8 - r.tail
	n, err := r.src.Read(r.raw[:free])
	if n > 0 {
		r.load(r.raw[:n])
	}
	switch {
	case err == io.EOF:
		r.eos.Store(true)
	case err != nil:
		r.err = err
	}
	return n > 0
}

// compact drops consumed words, folding them into the CRC first. Words from
// the mark on are kept.
func (r *Reader) compact() {
	r.UpdateCRC16()
	d := r.pos
	if r.marked {
		if mw := int((r.markAt - r.base) / 64); mw < d {
			d = mw
		}
	}
	if d == 0 {
		return
	}
	copy(r.words, r.words[d:r.avail+1])
	r.avail -= d
	r.pos -= d
	r.base += uint64(d) * 64
}

func (r *Reader) grow(want int) {
	c := max(2*(len(r.words)-1), want)
	words := make([]uint64, c+1)
	copy(words, r.words[:r.avail+1])
	r.words = words
	r.raw = make([]byte, c*8)
}

// load appends p to the buffer in canonical word order.
func (r *Reader) load(p []byte) {
	for len(p) > 0 {
		if r.tail == 0 && len(p) >= 8 {
			r.words[r.avail] = binary.BigEndian.Uint64(p)
			r.avail++
			p = p[8:]
			continue
		}
		if r.tail == 0 {
			r.words[r.avail] = 0
		}
		r.words[r.avail] |= uint64(p[0]) << (56 - 8*uint(r.tail))
		r.tail++
		p = p[1:]
		if r.tail == 8 {
			r.avail++
			r.tail = 0
		}
	}
}

// CRC16 returns the CRC-16 of every byte consumed since the last SetCRC16,
// excluding skipped bits. Only whole bytes count; a partially consumed byte
// is folded once the cursor leaves it.
func (r *Reader) CRC16() uint16 {
	return r.UpdateCRC16()
}

// SetCRC16 sets the CRC-16 state and moves the fold baseline to the byte
// holding the cursor.
func (r *Reader) SetCRC16(v uint16) {
	r.crc = v
	r.crcAt = r.ConsumedBits() / 8
}

// UpdateCRC16 folds all consumed bytes past the baseline into the CRC-16 and
// returns the state. Whole words go through the bulk engine.
func (r *Reader) UpdateCRC16() uint16 {
	end := r.ConsumedBits() / 8
	for r.crcAt < end && r.crcAt%8 != 0 {
		r.crc = crc.UpdateByte16(r.crc, r.byteAt(r.crcAt))
		r.crcAt++
	}
	if full := (end - min(r.crcAt, end)) / 8; full > 0 {
		i := int((r.crcAt*8 - r.base) / 64)
		r.crc = crc.Update16Words(r.crc, r.words[i:i+int(full)])
		r.crcAt += full * 8
	}
	for r.crcAt < end {
		r.crc = crc.UpdateByte16(r.crc, r.byteAt(r.crcAt))
		r.crcAt++
	}
	return r.crc
}

// byteAt returns the buffered byte at absolute offset off.
func (r *Reader) byteAt(off uint64) byte {
	rel := off*8 - r.base
	return byte(r.words[rel/64] >> (56 - rel%64))
}
