//go:build amd64 && !purego

package crc

import "golang.org/x/sys/cpu"

var hasCarrylessMul = cpu.X86.HasPCLMULQDQ

// foldLanesCLMUL is foldLanesGeneric on PCLMULQDQ. Implemented in
// fold_amd64.s.
//
//go:noescape
func foldLanesCLMUL(lanes *[8]uint64, w []uint64, k *[2]uint64)

func foldLanes(lanes *[8]uint64, w []uint64, k *[2]uint64) {
	if hasCarrylessMul {
		foldLanesCLMUL(lanes, w, k)
		return
	}
	foldLanesGeneric(lanes, w, k)
}
