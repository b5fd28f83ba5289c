package tables

// Block size codes with a meaning other than a direct table entry.
const (
	BlockSizeReserved = 0
	BlockSize8Bit     = 6 // 8-bit (size-1) follows the header
	BlockSize16Bit    = 7 // 16-bit (size-1) follows
)

// BlockSizes maps block size codes to samples per channel. Codes 0, 6 and
// 7 map to 0.
//
// Source: RFC 9639 §9.1.1
var BlockSizes = [16]int{
	0, 192, 576, 1152,
	2304, 4608, 0, 0,
	256, 512, 1024, 2048,
	4096, 8192, 16384, 32768,
}

// BlockSizeTrailer returns how many bytes follow the header for code.
func BlockSizeTrailer(code uint8) int {
	switch code {
	case BlockSize8Bit:
		return 1
	case BlockSize16Bit:
		return 2
	}
	return 0
}

// DecodeBlockSize resolves a block size code and its trailing value.
func DecodeBlockSize(code uint8, trailer uint32) int {
	if code == BlockSize8Bit || code == BlockSize16Bit {
		return int(trailer) + 1
	}
	return BlockSizes[code&0xF]
}
