package flac

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llehouerou/go-flac/internal/output"
)

type generatedConfig struct {
	SampleRate  int `json:"sample_rate"`
	BitDepth    int `json:"bit_depth"`
	NumChannels int `json:"num_channels"`
}

// TestGenerated decodes the streams written by testdata/generate.go.
func TestGenerated(t *testing.T) {
	streams, _ := filepath.Glob(filepath.Join("testdata", "generated", "*", "*.flac"))
	if len(streams) == 0 {
		t.Skip("no generated test data - run: go run testdata/generate.go")
	}

	for _, path := range streams {
		name, _ := filepath.Rel(filepath.Join("testdata", "generated"), path)
		t.Run(name, func(t *testing.T) {
			base := strings.TrimSuffix(strings.TrimSuffix(path, ".flac"), ".ref")
			var cfg generatedConfig
			data, err := os.ReadFile(base + ".json")
			if err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal(data, &cfg); err != nil {
				t.Fatal(err)
			}
			want, err := os.ReadFile(base + ".raw")
			if err != nil {
				t.Fatal(err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			samples, si, err := Decode(f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if int(si.SampleRate) != cfg.SampleRate || int(si.BitDepth) != cfg.BitDepth || int(si.Channels) != cfg.NumChannels {
				t.Errorf("StreamInfo = %d Hz %d bits %d channels, want %+v", si.SampleRate, si.BitDepth, si.Channels, cfg)
			}
			got := output.AppendLE(nil, samples, uint(si.BitDepth))
			if !bytes.Equal(got, want) {
				t.Errorf("decoded %d bytes of PCM, want %d; contents differ", len(got), len(want))
			}
		})
	}
}
