package flactest

import (
	"fmt"

	"github.com/icza/bitio"
)

// Sample is a stored channel value: int32, or int64 for a 33-bit side
// channel.
type Sample interface {
	~int32 | ~int64
}

// FixedResidual returns the residual of s under the fixed predictor of the
// given order. The first order samples are warm-up and get no residual.
func FixedResidual[S Sample](s []S, order int) []int32 {
	res := make([]int32, 0, len(s)-order)
	for i := order; i < len(s); i++ {
		var p int64
		switch order {
		case 1:
			p = int64(s[i-1])
		case 2:
			p = 2*int64(s[i-1]) - int64(s[i-2])
		case 3:
			p = 3*int64(s[i-1]) - 3*int64(s[i-2]) + int64(s[i-3])
		case 4:
			p = 4*int64(s[i-1]) - 6*int64(s[i-2]) + 4*int64(s[i-3]) - int64(s[i-4])
		}
		res = append(res, int32(int64(s[i])-p))
	}
	return res
}

// LPCResidual returns the residual of s under the quantized linear predictor
// coeffs with the given shift.
func LPCResidual[S Sample](s []S, coeffs []int32, shift uint) []int32 {
	order := len(coeffs)
	res := make([]int32, 0, len(s)-order)
	for i := order; i < len(s); i++ {
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * int64(s[i-1-j])
		}
		res = append(res, int32(int64(s[i])-sum>>shift))
	}
	return res
}

func writeResidual(w *bitio.Writer, sf *Subframe, res []int32) error {
	paramBits, escape := uint8(4), 15
	if sf.Method == 1 {
		paramBits, escape = 5, 31
	}
	if sf.RiceParam >= escape {
		return fmt.Errorf("rice parameter %d collides with escape code %d", sf.RiceParam, escape)
	}
	if sf.RiceParam < 0 && sf.EscapeBits > 31 {
		return fmt.Errorf("escape width %d does not fit 5 bits", sf.EscapeBits)
	}
	w.TryWriteBits(uint64(sf.Method), 2)
	w.TryWriteBits(uint64(sf.PartitionOrder), 4)

	per := (len(res) + sf.Order) >> sf.PartitionOrder
	i := 0
	for p := range 1 << sf.PartitionOrder {
		n := per
		if p == 0 {
			n -= sf.Order
		}
		if sf.RiceParam < 0 {
			w.TryWriteBits(uint64(escape), paramBits)
			w.TryWriteBits(uint64(sf.EscapeBits), 5)
			if sf.EscapeBits > 0 {
				for _, v := range res[i : i+n] {
					w.TryWriteBits(uint64(v), uint8(sf.EscapeBits))
				}
			}
		} else {
			k := uint(sf.RiceParam)
			w.TryWriteBits(uint64(k), paramBits)
			for _, v := range res[i : i+n] {
				WriteRice(w, v, k)
			}
		}
		i += n
	}
	return nil
}

// WriteRice writes v as a zigzag Rice code with parameter k.
func WriteRice(w *bitio.Writer, v int32, k uint) {
	u := uint32(v<<1) ^ uint32(v>>31)
	for q := u >> k; q > 0; q-- {
		w.TryWriteBool(false)
	}
	w.TryWriteBool(true)
	if k > 0 {
		w.TryWriteBits(uint64(u), uint8(k))
	}
}
