package syntax

import "github.com/llehouerou/go-flac/internal/bits"

// Residual coding methods.
const (
	residualRice  = 0 // 4-bit parameters, escape 15
	residualRice2 = 1 // 5-bit parameters, escape 31
)

// ReadResidual reads a partitioned Rice coded residual into dst, which holds
// blockSize-order values.
//
// Source: RFC 9639 §9.2.7
func ReadResidual(r *bits.Reader, dst []int32, blockSize, order int) error {
	v, ok := r.ReadBits(6)
	if !ok {
		return r.Underrun()
	}
	var paramBits uint
	var escape uint32
	switch v >> 4 {
	case residualRice:
		paramBits, escape = 4, 0xF
	case residualRice2:
		paramBits, escape = 5, 0x1F
	default:
		return ErrResidualMethod
	}

	partOrder := uint(v & 0xF)
	parts := 1 << partOrder
	per := blockSize >> partOrder
	if blockSize&(parts-1) != 0 || per < order {
		return ErrPartitionOrder
	}

	i := 0
	for p := range parts {
		n := per
		if p == 0 {
			n -= order
		}
		part := dst[i : i+n]
		i += n

		k, ok := r.ReadBits(paramBits)
		if !ok {
			return r.Underrun()
		}
		if k != escape {
			var st bits.RiceState
			if r.ReadRiceCodes(part, uint(k), &st) != n {
				return r.Underrun()
			}
			continue
		}

		width, ok := r.ReadBits(5)
		if !ok {
			return r.Underrun()
		}
		if width == 0 {
			clear(part)
			continue
		}
		for j := range part {
			if part[j], ok = r.ReadSigned(uint(width)); !ok {
				return r.Underrun()
			}
		}
	}
	return nil
}
