package bits

import "math"

// utf8Lead decodes the lead byte of a UTF-8 coded number into the count of
// continuation bytes and the value bits it carries. ok is false for a
// continuation byte in lead position.
func utf8Lead(b byte) (k int, v uint64, ok bool) {
	switch {
	case b < 0x80:
		return 0, uint64(b), true
	case b < 0xC0:
		return 0, 0, false
	case b < 0xE0:
		return 1, uint64(b & 0x1F), true
	case b < 0xF0:
		return 2, uint64(b & 0x0F), true
	case b < 0xF8:
		return 3, uint64(b & 0x07), true
	case b < 0xFC:
		return 4, uint64(b & 0x03), true
	case b < 0xFE:
		return 5, uint64(b & 0x01), true
	case b == 0xFE:
		return 6, 0, true
	}
	return 7, 0, true
}

// ReadUTF8Uint32 reads a UTF-8 coded number of up to 31 bits, appending its
// raw bytes to raw. A lead byte of 0xFE or 0xFF yields math.MaxUint32 after
// consuming only that byte; callers must treat it as invalid.
func (r *Reader) ReadUTF8Uint32(raw []byte) (uint32, []byte, error) {
	v, raw, err := r.readUTF8(raw, 5)
	if v == math.MaxUint64 {
		return math.MaxUint32, raw, err
	}
	return uint32(v), raw, err
}

// ReadUTF8Uint64 reads a UTF-8 coded number of up to 36 bits, appending its
// raw bytes to raw. A lead byte of 0xFF yields math.MaxUint64 after
// consuming only that byte; callers must treat it as invalid.
func (r *Reader) ReadUTF8Uint64(raw []byte) (uint64, []byte, error) {
	return r.readUTF8(raw, 6)
}

func (r *Reader) readUTF8(raw []byte, maxK int) (uint64, []byte, error) {
	lead, ok := r.PeekBits(8)
	if !ok {
		return 0, raw, r.Underrun()
	}
	k, v, ok := utf8Lead(byte(lead))
	if !ok {
		return 0, raw, ErrUTF8
	}
	if k > maxK {
		r.advance(8)
		return math.MaxUint64, append(raw, byte(lead)), nil
	}
	if !r.Ensure(uint64(k+1) * 8) {
		return 0, raw, r.Underrun()
	}
	r.advance(8)
	raw = append(raw, byte(lead))
	for range k {
		c := byte(r.peek(8))
		if c&0xC0 != 0x80 {
			return 0, raw, ErrUTF8
		}
		r.advance(8)
		raw = append(raw, c)
		v = v<<6 | uint64(c&0x3F)
	}
	return v, raw, nil
}
