//go:build ignore

// This script generates test data for FLAC decoder testing.
// Run with: go run testdata/generate.go
//
// Streams are synthesized in-process. When the reference flac encoder is
// available in PATH, each signal is also encoded with it so the decoder is
// exercised on real encoder output.
//
// Generated test data structure:
//   testdata/generated/
//   ├── 44100_16_stereo_4096/
//   │   ├── sine.flac       # synthetic stream
//   │   ├── sine.ref.flac   # flac encoder output (optional)
//   │   ├── sine.raw        # expected PCM, signed little-endian
//   │   └── sine.json       # configuration
//   └── ...

package main

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"math"
	"math/bits"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/llehouerou/go-flac/internal/flactest"
	"github.com/llehouerou/go-flac/internal/output"
)

// TestConfig describes a test configuration
type TestConfig struct {
	SampleRate  int    `json:"sample_rate"`
	BitDepth    int    `json:"bit_depth"`
	NumChannels int    `json:"num_channels"`
	BlockSize   int    `json:"block_size"`
	Stereo      string `json:"stereo,omitempty"` // "", "left_side", "side_right", "mid_side"
}

var configs = []TestConfig{
	{44100, 16, 1, 4096, ""},
	{44100, 16, 2, 4096, ""},
	{44100, 16, 2, 4096, "mid_side"},
	{48000, 16, 2, 1152, "left_side"},
	{48000, 24, 2, 4096, "side_right"},
	{96000, 24, 2, 4096, "mid_side"},
	{22050, 8, 1, 576, ""},
	{16000, 12, 1, 192, ""},
	{32000, 20, 2, 2304, "mid_side"},
	{44100, 16, 6, 4096, ""},
	{8000, 16, 8, 256, ""},
}

var audioTypes = []string{"silence", "sine1k", "sweep", "noise", "impulse"}

func main() {
	baseDir := filepath.Join("testdata", "generated")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	_, err := exec.LookPath("flac")
	haveEncoder := err == nil
	if !haveEncoder {
		fmt.Fprintf(os.Stderr, "Warning: flac encoder not found, writing synthetic streams only\n")
	}

	for _, cfg := range configs {
		dirName := fmt.Sprintf("%d_%d_%s_%d", cfg.SampleRate, cfg.BitDepth, channelName(cfg), cfg.BlockSize)
		dir := filepath.Join(baseDir, dirName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", dir, err)
			continue
		}
		for _, audioType := range audioTypes {
			if err := generateTestCase(dir, audioType, cfg, haveEncoder); err != nil {
				fmt.Fprintf(os.Stderr, "Error generating %s/%s: %v\n", dirName, audioType, err)
			} else {
				fmt.Printf("Generated %s/%s\n", dirName, audioType)
			}
		}
	}

	fmt.Println("\nDone!")
}

func channelName(cfg TestConfig) string {
	switch {
	case cfg.NumChannels == 1:
		return "mono"
	case cfg.NumChannels == 2 && cfg.Stereo != "":
		return cfg.Stereo
	case cfg.NumChannels == 2:
		return "stereo"
	}
	return strconv.Itoa(cfg.NumChannels) + "ch"
}

func generateTestCase(dir, audioType string, cfg TestConfig, haveEncoder bool) error {
	flacPath := filepath.Join(dir, audioType+".flac")
	rawPath := filepath.Join(dir, audioType+".raw")
	jsonPath := filepath.Join(dir, audioType+".json")

	// Half a second of audio, which leaves a partial last block for most
	// configurations.
	n := cfg.SampleRate / 2
	chans := make([][]int32, cfg.NumChannels)
	for ch := range chans {
		chans[ch] = signal(audioType, cfg, ch, n)
	}
	interleaved := make([]int32, n*cfg.NumChannels)
	output.Interleave(interleaved, chans, n)
	raw := output.AppendLE(nil, interleaved, uint(cfg.BitDepth))

	stream, err := encode(cfg, chans, raw)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := os.WriteFile(flacPath, stream, 0644); err != nil {
		return err
	}
	if err := os.WriteFile(rawPath, raw, 0644); err != nil {
		return err
	}
	if err := writeConfig(jsonPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if haveEncoder && cfg.BitDepth%8 == 0 {
		refPath := filepath.Join(dir, audioType+".ref.flac")
		if err := encodeReference(rawPath, refPath, cfg); err != nil {
			return fmt.Errorf("reference encoder: %w", err)
		}
	}
	return nil
}

func signal(audioType string, cfg TestConfig, ch, n int) []int32 {
	peak := float64(int64(1)<<(cfg.BitDepth-1) - 1)
	s := make([]int32, n)
	for i := range s {
		var v float64
		t := float64(i) / float64(cfg.SampleRate)
		switch audioType {
		case "sine1k":
			v = 0.8 * math.Sin(2*math.Pi*1000*t+float64(ch)*0.3)
		case "sweep":
			maxFreq := float64(cfg.SampleRate) / 4
			progress := float64(i) / float64(n)
			freq := 20 * math.Pow(maxFreq/20, progress)
			v = 0.7 * math.Sin(2*math.Pi*freq*t)
		case "noise":
			seed := uint32(i*cfg.NumChannels + ch + 12345)
			seed = seed*1103515245 + 12345
			v = float64(int32(seed)) / float64(math.MaxInt32) * 0.5
		case "impulse":
			if i%(cfg.SampleRate/10) == 0 {
				v = 0.9
			}
		}
		if ch > 0 && audioType != "silence" {
			v *= 1 - 0.05*float64(ch)
		}
		s[i] = int32(math.Round(v * peak))
	}
	return s
}

// encode writes a stream whose frames pick a subframe type per channel: a
// constant for silent blocks, a second order fixed predictor where its
// residual is small, verbatim otherwise.
func encode(cfg TestConfig, chans [][]int32, raw []byte) ([]byte, error) {
	n := len(chans[0])
	var frames [][]byte
	minFrame, maxFrame := uint32(math.MaxUint32), uint32(0)
	for num, start := 0, 0; start < n; num, start = num+1, start+cfg.BlockSize {
		end := min(start+cfg.BlockSize, n)
		f := flactest.Frame{
			Number:     uint64(num),
			BlockSize:  end - start,
			SampleRate: uint32(cfg.SampleRate),
			BitDepth:   uint(cfg.BitDepth),
			Assignment: uint8(cfg.NumChannels - 1),
		}
		block := make([][]int32, len(chans))
		for ch := range chans {
			block[ch] = chans[ch][start:end]
		}
		if cfg.NumChannels == 2 {
			block = decorrelate(cfg.Stereo, &f, block[0], block[1])
		}
		for _, s := range block {
			f.Subframes = append(f.Subframes, subframe(s))
		}
		p, err := f.Bytes()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", num, err)
		}
		frames = append(frames, p)
		minFrame = min(minFrame, uint32(len(p)))
		maxFrame = max(maxFrame, uint32(len(p)))
	}

	si := flactest.StreamInfo{
		MinBlockSize: uint16(cfg.BlockSize),
		MaxBlockSize: uint16(cfg.BlockSize),
		MinFrameSize: minFrame,
		MaxFrameSize: maxFrame,
		SampleRate:   uint32(cfg.SampleRate),
		Channels:     uint8(cfg.NumChannels),
		BitDepth:     uint8(cfg.BitDepth),
		TotalSamples: uint64(n),
		MD5:          md5.Sum(raw),
	}
	return flactest.Stream(si, frames...), nil
}

func decorrelate(mode string, f *flactest.Frame, left, right []int32) [][]int32 {
	switch mode {
	case "left_side":
		f.Assignment = flactest.LeftSide
		return [][]int32{left, flactest.Difference(left, right)}
	case "side_right":
		f.Assignment = flactest.SideRight
		return [][]int32{flactest.Difference(left, right), right}
	case "mid_side":
		f.Assignment = flactest.MidSide
		mid, side := flactest.MidSideOf(left, right)
		return [][]int32{mid, side}
	}
	return [][]int32{left, right}
}

func subframe(s []int32) flactest.Subframe {
	constant := true
	for _, v := range s[1:] {
		if v != s[0] {
			constant = false
			break
		}
	}
	if constant {
		return flactest.Subframe{Kind: flactest.Constant, Samples: s}
	}
	if len(s) <= 4 {
		return flactest.Subframe{Kind: flactest.Verbatim, Samples: s}
	}

	res := flactest.FixedResidual(s, 2)
	var sum uint64
	for _, r := range res {
		sum += uint64(max(r, -r))
	}
	k := bits.Len64(sum / uint64(len(res)))
	if k > 20 {
		return flactest.Subframe{Kind: flactest.Verbatim, Samples: s}
	}
	var method uint
	if k > 14 {
		method = 1
	}
	return flactest.Subframe{Kind: flactest.Fixed, Samples: s, Order: 2, Method: method, RiceParam: k}
}

func encodeReference(rawPath, refPath string, cfg TestConfig) error {
	cmd := exec.Command("flac", "-s", "-f", "--force-raw-format",
		"--endian=little", "--sign=signed",
		"--channels="+strconv.Itoa(cfg.NumChannels),
		"--bps="+strconv.Itoa(cfg.BitDepth),
		"--sample-rate="+strconv.Itoa(cfg.SampleRate),
		"--blocksize="+strconv.Itoa(cfg.BlockSize),
		"-o", refPath, rawPath)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func writeConfig(path string, cfg TestConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
