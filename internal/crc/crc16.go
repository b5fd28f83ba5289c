package crc

import "encoding/binary"

// Poly16 is the CRC-16 generator polynomial x^16 + x^15 + x^2 + 1
// (CRC-16-IBM, MSB first). Initial value 0, no reflection.
const Poly16 = 0x8005

// FoldThreshold is the smallest span, in bytes, handed to the folding
// kernel. Shorter spans are cheaper through the table.
const FoldThreshold = 256

// table16 maps the top byte of the state xor'ed with the input byte to the
// state contribution of that byte.
var table16 = makeTable16(Poly16)

func makeTable16(poly uint16) *[256]uint16 {
	t := new([256]uint16)
	for i := range t {
		c := uint16(i) << 8
		for range 8 {
			if c&0x8000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}

// useFold selects the folding kernel for large spans. It is initialised from
// the CPU feature check and only overridden by tests.
var useFold = hasCarrylessMul

// Update16 returns the CRC-16 state after absorbing p.
func Update16(crc uint16, p []byte) uint16 {
	if useFold && len(p) >= FoldThreshold {
		return update16Fold(crc, p)
	}
	return update16Table(crc, p)
}

// UpdateByte16 absorbs a single byte.
func UpdateByte16(crc uint16, b byte) uint16 {
	return crc<<8 ^ table16[byte(crc>>8)^b]
}

// Update16Words absorbs big-endian 64-bit words, eight bytes each, in order.
// This is the entry point used by the bit reader, whose buffer is already
// canonicalised into words.
func Update16Words(crc uint16, w []uint64) uint16 {
	if useFold && len(w)*8 >= FoldThreshold {
		return fold16(crc, w)
	}
	for _, x := range w {
		crc = updateWord16(crc, x)
	}
	return crc
}

// Checksum16 returns the CRC-16 of p.
func Checksum16(p []byte) uint16 {
	return Update16(0, p)
}

func update16Table(crc uint16, p []byte) uint16 {
	for _, b := range p {
		crc = crc<<8 ^ table16[byte(crc>>8)^b]
	}
	return crc
}

// updateWord16 absorbs the eight bytes of x, most significant first.
func updateWord16(crc uint16, x uint64) uint16 {
	for s := 56; s >= 0; s -= 8 {
		crc = crc<<8 ^ table16[byte(crc>>8)^byte(x>>uint(s))]
	}
	return crc
}

// foldChunkWords bounds the stack buffer the byte path stages words in.
const foldChunkWords = 512

// update16Fold feeds p to the folding kernel in chunks of big-endian words.
// Each chunk ends in a complete 16-bit state, so chunking is transparent.
func update16Fold(crc uint16, p []byte) uint16 {
	var buf [foldChunkWords]uint64
	for len(p) >= 16 {
		n := min(len(p)/8, foldChunkWords) &^ 1
		for i := range n {
			buf[i] = binary.BigEndian.Uint64(p[i*8:])
		}
		crc = fold16(crc, buf[:n])
		p = p[n*8:]
	}
	return update16Table(crc, p)
}
