package crc

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"
)

func randomBytes(seed uint64, n int) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(r.Uint32())
	}
	return p
}

// withFold runs fn with the folding kernel forced on or off.
func withFold(t *testing.T, on bool, fn func()) {
	t.Helper()
	saved := useFold
	useFold = on
	defer func() { useFold = saved }()
	fn()
}

func TestChecksum8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint8
	}{
		{"empty", nil, 0},
		{"check string", []byte("123456789"), 0xF4},
		{"single zero", []byte{0}, 0},
		{"single one", []byte{1}, 0x07},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum8(tt.in); got != tt.want {
				t.Errorf("Checksum8() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestChecksum16(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint16
	}{
		{"empty", nil, 0},
		{"check string", []byte("123456789"), 0xFEE8},
		{"single one", []byte{1}, 0x8005},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum16(tt.in); got != tt.want {
				t.Errorf("Checksum16() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

// bitwise8 and bitwise16 shift one bit at a time, straight from the
// polynomial definition.
func bitwise8(p []byte) uint8 {
	var c uint8
	for _, b := range p {
		c ^= b
		for range 8 {
			if c&0x80 != 0 {
				c = c<<1 ^ Poly8
			} else {
				c <<= 1
			}
		}
	}
	return c
}

func bitwise16(p []byte) uint16 {
	var c uint16
	for _, b := range p {
		c ^= uint16(b) << 8
		for range 8 {
			if c&0x8000 != 0 {
				c = c<<1 ^ Poly16
			} else {
				c <<= 1
			}
		}
	}
	return c
}

func TestUpdate8MatchesReference(t *testing.T) {
	for _, n := range []int{0, 1, 7, 16, 100, 1000} {
		p := randomBytes(uint64(n), n)
		want := bitwise8(p)
		if got := Checksum8(p); got != want {
			t.Errorf("n=%d: Checksum8 = %#02x, reference %#02x", n, got, want)
		}
		var c uint8
		for _, b := range p {
			c = UpdateByte8(c, b)
		}
		if c != want {
			t.Errorf("n=%d: UpdateByte8 = %#02x, reference %#02x", n, c, want)
		}
	}
}

func TestUpdate16MatchesReference(t *testing.T) {
	sizes := []int{0, 1, 15, 16, 17, 255, 256, 257, 511, 1024, 4095, 4096 + 24, 70000}
	for _, on := range []bool{false, true} {
		withFold(t, on, func() {
			for _, n := range sizes {
				p := randomBytes(uint64(n)+1, n)
				want := bitwise16(p)
				if got := Checksum16(p); got != want {
					t.Errorf("fold=%v n=%d: Checksum16 = %#04x, reference %#04x", on, n, got, want)
				}
			}
		})
	}
}

func TestUpdate16Associative(t *testing.T) {
	p := randomBytes(42, 9000)
	want := update16Table(0, p)
	for _, on := range []bool{false, true} {
		withFold(t, on, func() {
			for _, split := range []int{0, 1, 3, 200, 256, 1000, 4097, 8999, 9000} {
				got := Update16(Update16(0, p[:split]), p[split:])
				if got != want {
					t.Errorf("fold=%v split=%d: got %#04x, want %#04x", on, split, got, want)
				}
			}
		})
	}
}

func TestUpdate16NonZeroSeed(t *testing.T) {
	p := randomBytes(7, 3000)
	for _, seed := range []uint16{0x0001, 0x8000, 0xBEEF, 0xFFFF} {
		want := update16Table(seed, p)
		withFold(t, true, func() {
			if got := Update16(seed, p); got != want {
				t.Errorf("seed %#04x: got %#04x, want %#04x", seed, got, want)
			}
		})
	}
}

func TestUpdate16Words(t *testing.T) {
	for _, nw := range []int{0, 1, 2, 3, 7, 8, 9, 31, 32, 33, 64, 127, 1000} {
		p := randomBytes(uint64(nw)*3, nw*8)
		w := make([]uint64, nw)
		for i := range w {
			w[i] = binary.BigEndian.Uint64(p[i*8:])
		}
		want := update16Table(0x1234, p)
		for _, on := range []bool{false, true} {
			withFold(t, on, func() {
				if got := Update16Words(0x1234, w); got != want {
					t.Errorf("fold=%v words=%d: got %#04x, want %#04x", on, nw, got, want)
				}
			})
		}
	}
}

func TestFold16DirectAllLengths(t *testing.T) {
	// Every lane/tail combination around the 4-lane step.
	p := randomBytes(99, 8*80)
	w := make([]uint64, 80)
	for i := range w {
		w[i] = binary.BigEndian.Uint64(p[i*8:])
	}
	for n := 0; n <= len(w); n++ {
		want := update16Table(0xA5A5, p[:n*8])
		if got := fold16(0xA5A5, w[:n]); got != want {
			t.Fatalf("words=%d: got %#04x, want %#04x", n, got, want)
		}
	}
}

func TestFoldLanes_MatchesGeneric(t *testing.T) {
	p := randomBytes(7, 8*64)
	w := make([]uint64, 64)
	for i := range w {
		w[i] = binary.BigEndian.Uint64(p[i*8:])
	}
	for _, n := range []int{0, 8, 16, 56} {
		var want, got [8]uint64
		copy(want[:], w[56:])
		got = want
		foldLanesGeneric(&want, w[:n], &kStep)
		foldLanes(&got, w[:n], &kStep)
		if got != want {
			t.Errorf("words=%d: lanes %x, want %x", n, got, want)
		}
	}
}

func TestXnModP(t *testing.T) {
	if got := xnModP(0); got != 1 {
		t.Errorf("x^0 mod P = %#x, want 1", got)
	}
	if got := xnModP(15); got != 0x8000 {
		t.Errorf("x^15 mod P = %#x, want 0x8000", got)
	}
	if got := xnModP(16); got != Poly16 {
		t.Errorf("x^16 mod P = %#x, want %#x", got, Poly16)
	}
}

func BenchmarkUpdate16(b *testing.B) {
	p := randomBytes(1, 64<<10)
	for _, on := range []bool{false, true} {
		name := "table"
		if on {
			name = "fold"
		}
		b.Run(name, func(b *testing.B) {
			saved := useFold
			useFold = on
			defer func() { useFold = saved }()
			b.SetBytes(int64(len(p)))
			for range b.N {
				Update16(0, p)
			}
		})
	}
}
