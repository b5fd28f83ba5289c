// Package pool recycles the []int32 sample buffers owned by frames and by
// per-channel decoding.
package pool

import (
	"math/bits"
	"sync"
)

const (
	minShift = 8  // 256 samples
	maxShift = 20 // 1Mi samples, enough for 8 channels of 65536
)

var classes [maxShift - minShift + 1]sync.Pool

func class(n int) int {
	if n <= 1<<minShift {
		return 0
	}
	return bits.Len(uint(n-1)) - minShift
}

// Get returns a buffer of length n. Its contents are unspecified.
func Get(n int) []int32 {
	c := class(n)
	if c >= len(classes) {
		return make([]int32, n)
	}
	if p, ok := classes[c].Get().(*[]int32); ok {
		return (*p)[:n]
	}
	return make([]int32, n, 1<<(c+minShift))
}

// Put returns a buffer obtained from Get. The caller must not use it again.
func Put(s []int32) {
	c := class(cap(s))
	if c >= len(classes) || cap(s) != 1<<(c+minShift) {
		return
	}
	s = s[:0]
	classes[c].Put(&s)
}
