package tables

// BitDepthStream selects the STREAMINFO bit depth.
const BitDepthStream = 0

// BitDepths maps the 3-bit sample size code to bits per sample, as coded on
// the wire: 1 is 8 bits and 3 is reserved (maps to 0). Code 0 defers to
// STREAMINFO.
//
// Source: RFC 9639 §9.1.4
var BitDepths = [8]uint8{0, 8, 12, 0, 16, 20, 24, 32}

// BitDepthReserved reports whether code is reserved.
func BitDepthReserved(code uint8) bool {
	return code == 3
}
