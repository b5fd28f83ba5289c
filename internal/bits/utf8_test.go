package bits

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestReadUTF8Uint64(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    uint64
		wantLen int
		wantErr error
	}{
		{"ascii", []byte{0x41}, 65, 1, nil},
		{"zero", []byte{0x00}, 0, 1, nil},
		{"two bytes", []byte{0xC3, 0xA9}, 0x03<<6 | 0x29, 2, nil},
		{"three bytes", []byte{0xE2, 0x82, 0xAC}, 0x20AC, 3, nil},
		{"seven bytes", []byte{0xFE, 0xBF, 0xBF, 0xBF, 0xBF, 0xBF, 0xBF}, 1<<36 - 1, 7, nil},
		{"all ones lead", []byte{0xFF, 0x80}, math.MaxUint64, 1, nil},
		{"continuation lead", []byte{0x80}, 0, 0, ErrUTF8},
		{"bad continuation", []byte{0xC3, 0x29}, 0, 1, ErrUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data), 0)
			got, raw, err := r.ReadUTF8Uint64(nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("value = %#x, want %#x", got, tt.want)
			}
			if len(raw) != tt.wantLen || !bytes.Equal(raw, tt.data[:tt.wantLen]) {
				t.Errorf("raw = % x, want % x", raw, tt.data[:tt.wantLen])
			}
			if r.ConsumedBits() != uint64(tt.wantLen)*8 {
				t.Errorf("ConsumedBits = %d, want %d", r.ConsumedBits(), tt.wantLen*8)
			}
		})
	}
}

func TestReadUTF8Uint32(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"ascii", []byte{0x41}, 65},
		{"six bytes", []byte{0xFD, 0xBF, 0xBF, 0xBF, 0xBF, 0xBF}, 1<<31 - 1},
		{"seven byte lead", []byte{0xFE, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}, math.MaxUint32},
		{"all ones lead", []byte{0xFF}, math.MaxUint32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data), 0)
			got, _, err := r.ReadUTF8Uint32(nil)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("value = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestReadUTF8_AppendsToRaw(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xC3, 0xA9}), 0)
	raw := []byte{0xFF, 0xF8}
	_, raw, err := r.ReadUTF8Uint32(raw)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0xFF, 0xF8, 0xC3, 0xA9}; !bytes.Equal(raw, want) {
		t.Errorf("raw = % x, want % x", raw, want)
	}
}

func TestReadUTF8_TruncatedDoesNotConsume(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xE2, 0x82}), 0)
	if _, _, err := r.ReadUTF8Uint64(nil); err == nil {
		t.Fatal("expected underrun")
	}
	if r.ConsumedBits() != 0 {
		t.Errorf("ConsumedBits = %d, want 0", r.ConsumedBits())
	}
}
