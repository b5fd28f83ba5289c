package bits

// Zigzag maps an unsigned Rice value back to a signed residual:
// 0, 1, 2, 3, 4 ... becomes 0, -1, 1, -2, 2 ...
func Zigzag(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// ReadRiceCode reads one Rice code with parameter k: a unary quotient
// followed by k remainder bits, zigzag-decoded.
func (r *Reader) ReadRiceCode(k uint) (int32, bool) {
	checkWidth(k, 32)
	for {
		q, found := r.scanZeros()
		need := q + 1 + uint64(k)
		if found && r.BufferedBits() >= need {
			r.advance(q + 1)
			lo := r.peek(k)
			r.advance(uint64(k))
			return Zigzag(uint32(q)<<k | uint32(lo)), true
		}
		if !found {
			need = q + 1
		}
		if !r.refill(need) {
			return 0, false
		}
	}
}

type ricePhase uint8

const (
	riceQuotient ricePhase = iota
	riceRemainder
)

// RiceState carries a partially read Rice code across calls to
// ReadRiceCodes. The zero value starts a fresh code.
type RiceState struct {
	phase ricePhase
	q     uint32
}

// Pending reports whether a code has been partly consumed.
func (s *RiceState) Pending() bool {
	return s.phase != riceQuotient || s.q != 0
}

// ReadRiceCodes fills dst with Rice codes of parameter k and returns how many
// were decoded. Unlike ReadRiceCode it consumes input as it goes: when the
// source runs dry mid-code, the progress is kept in st and the next call
// with the same st resumes where this one stopped. Results equal those of
// repeated ReadRiceCode calls.
func (r *Reader) ReadRiceCodes(dst []int32, k uint, st *RiceState) int {
	checkWidth(k, 32)
	for i := range dst {
		for st.phase == riceQuotient {
			n, found := r.scanZeros()
			if found {
				st.q += uint32(n)
				r.advance(n + 1)
				st.phase = riceRemainder
				break
			}
			st.q += uint32(n)
			r.advance(n)
			if !r.refill(1) {
				return i
			}
		}
		if r.BufferedBits() < uint64(k) && !r.Ensure(uint64(k)) {
			return i
		}
		lo := r.peek(k)
		r.advance(uint64(k))
		dst[i] = Zigzag(st.q<<k | uint32(lo))
		*st = RiceState{}
	}
	return len(dst)
}
