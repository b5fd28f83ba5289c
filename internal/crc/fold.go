package crc

// Folding kernel for CRC-16.
//
// The buffer is viewed as a polynomial over GF(2), most significant bit of the
// first byte being the highest power. A 128-bit accumulator A (hi:lo) is
// congruent, modulo P, to everything absorbed so far. Appending a 128-bit block
// B gives A·x^128 + B, and
//
//	A·x^128 = hi·x^192 + lo·x^128 ≡ hi·K(192) + lo·K(128)   (mod P)
//
// where K(n) = x^n mod P has degree < 16, so the products fit in 80 bits and
// the accumulator never grows. Four independent lanes advance by 512 bits per
// step, through PCLMULQDQ where the CPU has it (fold_amd64.s), and are merged
// at the end with K(448)/K(384), K(320)/K(256) and K(192)/K(128). The final
// remainder is A·x^16 mod P, which is the table CRC of A's sixteen bytes from
// a zero state.
//
// The initial state c is injected by xoring it into the first two bytes:
// c·x^(8n) + D·x^16 = (D + c·x^(8n-16))·x^16.

var (
	k128 = xnModP(128)
	k192 = xnModP(192)
	k256 = xnModP(256)
	k320 = xnModP(320)
	k384 = xnModP(384)
	k448 = xnModP(448)
	k512 = xnModP(512)
	k576 = xnModP(576)

	// kStep advances a lane by 512 bits.
	kStep = [2]uint64{uint64(k576), uint64(k512)}
)

// xnModP returns x^n mod P for the CRC-16 polynomial.
func xnModP(n int) uint16 {
	const p = 1<<16 | Poly16
	r := uint32(1)
	for range n {
		r <<= 1
		if r&(1<<16) != 0 {
			r ^= p
		}
	}
	return uint16(r)
}

// clmul returns the 80-bit carryless product a·k as hi:lo.
func clmul(a uint64, k uint16) (hi, lo uint64) {
	for i := uint(0); i < 16; i++ {
		if k&(1<<i) != 0 {
			lo ^= a << i
			hi ^= a >> (64 - i)
		}
	}
	return hi, lo
}

// shift returns a value congruent to (hi:lo)·x^n, given kHi = K(n+64) and
// kLo = K(n).
func shift(hi, lo uint64, kHi, kLo uint16) (uint64, uint64) {
	h1, l1 := clmul(hi, kHi)
	h2, l2 := clmul(lo, kLo)
	return h1 ^ h2, l1 ^ l2
}

// fold16 absorbs w through the folding kernel. Words past the last complete
// 128-bit block go through the table.
func fold16(crc uint16, w []uint64) uint16 {
	n := len(w) &^ 1
	if n < 2 {
		for _, x := range w {
			crc = updateWord16(crc, x)
		}
		return crc
	}

	ah, al := w[0]^uint64(crc)<<48, w[1]
	i := 2
	if n >= 8 {
		lanes := [8]uint64{ah, al, w[2], w[3], w[4], w[5], w[6], w[7]}
		i = 8 + (n-8)&^7
		foldLanes(&lanes, w[8:i], &kStep)
		ah, al = shift(lanes[0], lanes[1], k448, k384)
		bh, bl := shift(lanes[2], lanes[3], k320, k256)
		ch, cl := shift(lanes[4], lanes[5], k192, k128)
		ah ^= bh ^ ch ^ lanes[6]
		al ^= bl ^ cl ^ lanes[7]
	}
	for ; i < n; i += 2 {
		ah, al = shift(ah, al, k192, k128)
		ah ^= w[i]
		al ^= w[i+1]
	}

	crc = updateWord16(0, ah)
	crc = updateWord16(crc, al)
	for ; i < len(w); i++ {
		crc = updateWord16(crc, w[i])
	}
	return crc
}

// foldLanesGeneric advances the four lanes (hi, lo pairs) by one 512-bit
// block of w per step. len(w) must be a multiple of 8.
func foldLanesGeneric(lanes *[8]uint64, w []uint64, k *[2]uint64) {
	kHi, kLo := uint16(k[0]), uint16(k[1])
	for i := 0; i+8 <= len(w); i += 8 {
		for j := 0; j < 8; j += 2 {
			h, l := shift(lanes[j], lanes[j+1], kHi, kLo)
			lanes[j] = h ^ w[i+j]
			lanes[j+1] = l ^ w[i+j+1]
		}
	}
}
