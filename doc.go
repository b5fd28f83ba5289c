// Package flac provides a pure Go FLAC (Free Lossless Audio Codec) decoder.
//
// # Basic Usage
//
// To decode a FLAC file:
//
//	f, err := os.Open("song.flac")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	dec, err := flac.NewDecoder(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dec.Close()
//
//	for {
//	    frame, err := dec.NextFrame()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // frame.Samples() holds BlockSize*Channels interleaved samples.
//	}
//
// # API Variants
//
// Frames can be pulled in several shapes:
//   - NextFrame: one decoded frame with its FrameInfo
//   - Read: interleaved []int32, crossing frame boundaries
//   - PCMBuffer: a go-audio *audio.IntBuffer, for the go-audio ecosystem
//   - PCMReader: little-endian PCM bytes as an io.Reader
//
// Decode reads a whole stream at once. NewRawDecoder decodes bare frames
// without the fLaC signature and metadata.
//
// # Non-blocking Sources
//
// A source may answer a Read with (0, nil) to say that no data is available
// yet. Frame decoding then returns ErrNoData and the next call picks up
// where the last one stopped. Metadata is read with blocking semantics.
//
// # Errors
//
// A frame header that fails validation or its CRC-8 is taken for a false
// sync code and skipped. Once a header is accepted, any later problem in
// the frame (CRC-16 mismatch, reserved subframe type, truncation) is fatal,
// and the decoder returns the same error from then on.
//
// # Thread Safety
//
// Decoder instances are NOT safe for concurrent use. Each goroutine should
// have its own Decoder.
//
// # Reference
//
// RFC 9639, Free Lossless Audio Codec: https://www.rfc-editor.org/rfc/rfc9639
package flac
