package tables

// Sample rate codes with a meaning other than a direct table entry.
const (
	SampleRateStream    = 0  // use the STREAMINFO sample rate
	SampleRate8BitKHz   = 12 // 8-bit value in kHz follows the header
	SampleRate16BitHz   = 13 // 16-bit value in Hz follows
	SampleRate16BitTens = 14 // 16-bit value in tens of Hz follows
	SampleRateInvalid   = 15
)

// SampleRates maps sample rate codes 1-11 to Hz. Other codes map to 0.
//
// Source: RFC 9639 §9.1.2
var SampleRates = [16]uint32{
	0, 88200, 176400, 192000,
	8000, 16000, 22050, 24000,
	32000, 44100, 48000, 96000,
	0, 0, 0, 0,
}

// SampleRateTrailer returns how many bytes follow the header for code.
func SampleRateTrailer(code uint8) int {
	switch code {
	case SampleRate8BitKHz:
		return 1
	case SampleRate16BitHz, SampleRate16BitTens:
		return 2
	}
	return 0
}

// DecodeSampleRate resolves a sample rate code and its trailing value.
func DecodeSampleRate(code uint8, trailer uint32) uint32 {
	switch code {
	case SampleRate8BitKHz:
		return trailer * 1000
	case SampleRate16BitHz:
		return trailer
	case SampleRate16BitTens:
		return trailer * 10
	}
	return SampleRates[code&0xF]
}
