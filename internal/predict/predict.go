// Package predict restores samples from prediction residuals.
//
// Both predictors work in place: s[:order] holds the warm-up samples and
// s[order:] the residuals, which are replaced by the reconstructed signal.
// Sums are accumulated in 64 bits so 32-bit streams cannot overflow before
// the shift. int64 signals carry the 33-bit side channel of a 32-bit frame.
//
// Source: RFC 9639 §9.2.5 (fixed), §9.2.6 (linear predictive)
package predict

import "errors"

// MaxFixedOrder is the highest fixed predictor order.
const MaxFixedOrder = 4

// MaxLPCOrder is the highest linear predictor order.
const MaxLPCOrder = 32

// Sample is a channel value.
type Sample interface {
	~int32 | ~int64
}

// ErrOrder is returned for a predictor order the format does not define.
var ErrOrder = errors.New("predict: invalid predictor order")

// Fixed restores s using the fixed polynomial predictor of the given order.
func Fixed[S Sample](s []S, order int) error {
	if order < 0 || order > MaxFixedOrder || order > len(s) {
		return ErrOrder
	}
	switch order {
	case 1:
		for i := 1; i < len(s); i++ {
			s[i] += s[i-1]
		}
	case 2:
		for i := 2; i < len(s); i++ {
			s[i] = S(int64(s[i]) + 2*int64(s[i-1]) - int64(s[i-2]))
		}
	case 3:
		for i := 3; i < len(s); i++ {
			s[i] = S(int64(s[i]) + 3*int64(s[i-1]) - 3*int64(s[i-2]) + int64(s[i-3]))
		}
	case 4:
		for i := 4; i < len(s); i++ {
			s[i] = S(int64(s[i]) + 4*int64(s[i-1]) - 6*int64(s[i-2]) + 4*int64(s[i-3]) - int64(s[i-4]))
		}
	}
	return nil
}

// LPC restores s using quantized predictor coefficients and shift. coeffs[j]
// weighs the sample j+1 positions back.
func LPC[S Sample](s []S, coeffs []int32, shift uint) error {
	order := len(coeffs)
	if order < 1 || order > MaxLPCOrder || order > len(s) {
		return ErrOrder
	}
	switch order {
	case 1:
		c0 := int64(coeffs[0])
		for i := 1; i < len(s); i++ {
			s[i] += S(c0 * int64(s[i-1]) >> shift)
		}
	case 2:
		c0, c1 := int64(coeffs[0]), int64(coeffs[1])
		for i := 2; i < len(s); i++ {
			s[i] += S((c0*int64(s[i-1]) + c1*int64(s[i-2])) >> shift)
		}
	default:
		for i := order; i < len(s); i++ {
			var sum int64
			h := s[i-order : i]
			for j, c := range coeffs {
				sum += int64(c) * int64(h[order-1-j])
			}
			s[i] += S(sum >> shift)
		}
	}
	return nil
}
