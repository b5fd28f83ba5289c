// Package crc implements the two checksums guarding FLAC frames: CRC-8 over
// the frame header and CRC-16 over the whole frame.
//
// Both engines absorb bytes through a 256-entry transition table. The CRC-16
// engine also has a bulk path that folds 16-byte blocks with carryless
// multiplication; it is bit-identical to the table path for every input and
// every chunking of calls.
//
// Source: RFC 9639 §9.1.8 (CRC-8), §9.3 (CRC-16)
package crc

// Poly8 is the CRC-8 generator polynomial x^8 + x^2 + x + 1 (CRC-8-CCITT,
// called ATM in some libraries). Initial value 0, no reflection.
const Poly8 = 0x07

// table8 maps crc^b to the next CRC-8 state.
var table8 = makeTable8(Poly8)

func makeTable8(poly uint8) *[256]uint8 {
	t := new([256]uint8)
	for i := range t {
		c := uint8(i)
		for range 8 {
			if c&0x80 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}

// Update8 returns the CRC-8 state after absorbing p.
func Update8(crc uint8, p []byte) uint8 {
	for _, b := range p {
		crc = table8[crc^b]
	}
	return crc
}

// UpdateByte8 absorbs a single byte.
func UpdateByte8(crc uint8, b byte) uint8 {
	return table8[crc^b]
}

// Checksum8 returns the CRC-8 of p.
func Checksum8(p []byte) uint8 {
	return Update8(0, p)
}
