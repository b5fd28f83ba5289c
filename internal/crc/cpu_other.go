//go:build !amd64 || purego

package crc

// No carryless multiply kernel; every span goes through the table.
const hasCarrylessMul = false

func foldLanes(lanes *[8]uint64, w []uint64, k *[2]uint64) {
	foldLanesGeneric(lanes, w, k)
}
