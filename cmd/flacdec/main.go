// Command flacdec decodes FLAC files to WAV, prints stream information and
// cross-checks the decoder against github.com/mewkiz/flac.
package main

import (
	"crypto/md5"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mflac "github.com/mewkiz/flac"

	"github.com/llehouerou/go-flac"
)

const wavFormatPCM = 1

var (
	in      = flag.String("in", "", "FLAC file to decode (required)")
	out     = flag.String("out", "", "WAV file to write")
	info    = flag.Bool("info", false, "Print stream information")
	verify  = flag.Bool("verify", false, "Compare every frame against the mewkiz/flac decoder")
	showMD5 = flag.Bool("md5", false, "Print the stored and the computed MD5 of the audio")
	verbose = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(log); err != nil {
		log.Error("flacdec failed", "in", *in, "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	if *info {
		if err := printInfo(log); err != nil {
			return err
		}
	}
	if *showMD5 {
		if err := printMD5(log); err != nil {
			return err
		}
	}
	if *verify {
		if err := verifyReference(log); err != nil {
			return err
		}
	}
	if *out != "" {
		return decodeToWAV(log, *out)
	}
	return nil
}

func open(log *slog.Logger, cfg flac.Config) (*flac.Decoder, *os.File, error) {
	f, err := os.Open(*in)
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger = log
	dec, err := flac.NewDecoderConfig(f, cfg)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return dec, f, nil
}

func printInfo(log *slog.Logger) error {
	dec, f, err := open(log, flac.DefaultConfig())
	if err != nil {
		return err
	}
	defer f.Close()
	defer dec.Close()

	si := dec.Info()
	fmt.Printf("sample rate:   %d Hz\n", si.SampleRate)
	fmt.Printf("channels:      %d\n", si.Channels)
	fmt.Printf("bit depth:     %d\n", si.BitDepth)
	fmt.Printf("total samples: %d\n", si.TotalSamples)
	fmt.Printf("block size:    %d-%d\n", si.MinBlockSize, si.MaxBlockSize)
	fmt.Printf("frame size:    %d-%d bytes\n", si.MinFrameSize, si.MaxFrameSize)
	fmt.Printf("md5:           %x\n", si.MD5)
	if si.SampleRate > 0 {
		fmt.Printf("duration:      %.3f s\n", float64(si.TotalSamples)/float64(si.SampleRate))
	}
	return nil
}

func printMD5(log *slog.Logger) error {
	cfg := flac.DefaultConfig()
	cfg.VerifyMD5 = false
	dec, f, err := open(log, cfg)
	if err != nil {
		return err
	}
	defer f.Close()
	defer dec.Close()

	h := md5.New()
	if _, err := io.Copy(h, dec.PCMReader()); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	si := dec.Info()
	fmt.Printf("stored md5:   %x\n", si.MD5)
	fmt.Printf("computed md5: %x\n", h.Sum(nil))
	return nil
}

// wavDepth returns the WAV sample size for a FLAC bit depth and the left
// shift that scales samples to it.
func wavDepth(bitDepth int) (int, uint) {
	for _, d := range []int{8, 16, 24, 32} {
		if bitDepth <= d {
			return d, uint(d - bitDepth)
		}
	}
	return 32, 0
}

func decodeToWAV(log *slog.Logger, path string) error {
	dec, f, err := open(log, flac.DefaultConfig())
	if err != nil {
		return err
	}
	defer f.Close()
	defer dec.Close()

	si := dec.Info()
	depth, shift := wavDepth(int(si.BitDepth))
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	enc := wav.NewEncoder(w, int(si.SampleRate), depth, int(si.Channels), wavFormatPCM)

	buf := &audio.IntBuffer{Data: make([]int, 4096*int(si.Channels))}
	var frames int
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("decoding: %w", err)
		}
		if n == 0 {
			break
		}
		data := buf.Data[:n]
		for i, v := range data {
			v <<= shift
			if depth == 8 {
				// 8-bit WAV samples are unsigned.
				v += 128
			}
			data[i] = v
		}
		chunk := &audio.IntBuffer{Format: buf.Format, Data: data, SourceBitDepth: depth}
		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("writing WAV: %w", err)
		}
		frames += n / int(si.Channels)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing WAV: %w", err)
	}
	log.Info("decoded", "in", *in, "out", path, "samples", frames, "wav_bit_depth", depth)
	return nil
}

func verifyReference(log *slog.Logger) error {
	cfg := flac.DefaultConfig()
	dec, f, err := open(log, cfg)
	if err != nil {
		return err
	}
	defer f.Close()
	defer dec.Close()

	rf, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer rf.Close()
	ref, err := mflac.New(rf)
	if err != nil {
		return fmt.Errorf("reference decoder: %w", err)
	}
	defer ref.Close()

	var ch []int32
	for n := 0; ; n++ {
		got, err := dec.NextFrame()
		want, refErr := ref.ParseNext()
		switch {
		case err == io.EOF && errors.Is(refErr, io.EOF):
			log.Info("verified", "frames", n, "samples", dec.SamplesDecoded())
			return nil
		case err != nil:
			return fmt.Errorf("frame %d: %w", n, err)
		case refErr != nil:
			return fmt.Errorf("frame %d: reference decoder: %w", n, refErr)
		}
		if int(want.BlockSize) != got.BlockSize || len(want.Subframes) != got.Channels {
			return fmt.Errorf("frame %d: %d samples x %d channels, reference %d x %d",
				n, got.BlockSize, got.Channels, want.BlockSize, len(want.Subframes))
		}
		if cap(ch) < got.BlockSize {
			ch = make([]int32, got.BlockSize)
		}
		for c, sf := range want.Subframes {
			if !slices.Equal(got.Channel(ch, c), sf.Samples[:got.BlockSize]) {
				return fmt.Errorf("frame %d channel %d: samples differ from reference", n, c)
			}
		}
	}
}
