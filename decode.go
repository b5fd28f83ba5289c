package flac

import (
	"errors"
	"io"
)

// Decode reads a whole FLAC stream and returns its samples, interleaved.
// r should block until data is available.
func Decode(r io.Reader) ([]int32, StreamInfo, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, StreamInfo{}, err
	}
	defer d.Close()

	var out []int32
	if n := d.info.TotalSamples * uint64(d.info.Channels); n > 0 && n <= 1<<28 {
		out = make([]int32, 0, n)
	}
	for {
		f, err := d.NextFrame()
		switch {
		case err == io.EOF:
			return out, d.info, nil
		case errors.Is(err, ErrNoData):
			continue
		case err != nil:
			return nil, d.info, err
		}
		out = append(out, f.Samples()...)
	}
}
