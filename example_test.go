package flac_test

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/llehouerou/go-flac"
	"github.com/llehouerou/go-flac/internal/flactest"
)

// exampleStream is one mono frame of four samples, all 42.
func exampleStream() []byte {
	f := flactest.Frame{
		BlockSize:  4,
		SampleRate: 8000,
		BitDepth:   16,
		Subframes: []flactest.Subframe{
			{Kind: flactest.Constant, Samples: slices.Repeat([]int32{42}, 4)},
		},
	}
	return flactest.Stream(flactest.StreamInfo{
		MinBlockSize: 16, MaxBlockSize: 16,
		SampleRate: 8000, Channels: 1, BitDepth: 16, TotalSamples: 4,
	}, f.MustBytes())
}

func Example() {
	dec, err := flac.NewDecoder(bytes.NewReader(exampleStream()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer dec.Close()

	info := dec.Info()
	fmt.Printf("Sample rate: %d Hz\n", info.SampleRate)
	fmt.Printf("Channels: %d\n", info.Channels)

	for {
		frame, err := dec.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(frame.Assignment, frame.Samples())
	}

	// Output:
	// Sample rate: 8000 Hz
	// Channels: 1
	// independent [42 42 42 42]
}

func ExampleDecoder_Read() {
	dec, err := flac.NewDecoder(bytes.NewReader(exampleStream()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer dec.Close()

	buf := make([]int32, 3)
	for {
		n, err := dec.Read(buf)
		if err != nil {
			fmt.Println(err)
			break
		}
		fmt.Println(buf[:n])
	}

	// Output:
	// [42 42 42]
	// [42]
	// EOF
}
