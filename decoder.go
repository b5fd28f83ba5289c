package flac

import (
	"bufio"
	"crypto/md5"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"

	"github.com/go-audio/audio"

	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/output"
	"github.com/llehouerou/go-flac/internal/pool"
	"github.com/llehouerou/go-flac/internal/syntax"
)

// Decoder decodes the audio frames of a FLAC stream.
//
// Frames are pulled one at a time with NextFrame, or as a flat sequence of
// interleaved samples with Read, PCMBuffer or PCMReader. The three pull
// styles share the decoder's position and should not be mixed.
type Decoder struct {
	cfg  Config
	info StreamInfo
	log  *slog.Logger

	br   *bits.Reader
	sync *syntax.Synchronizer

	frame   *Frame
	samples uint64

	md5     hash.Hash
	pcm     []byte
	scratch []int32

	closed bool
	err    error
}

// NewDecoder reads the stream signature and metadata from r and returns a
// decoder positioned on the first frame, using DefaultConfig.
func NewDecoder(r io.Reader) (*Decoder, error) {
	return NewDecoderConfig(r, DefaultConfig())
}

// NewDecoderConfig is NewDecoder with an explicit configuration.
//
// Metadata is read with blocking semantics: a source that answers (0, nil)
// must not be handed in before the metadata is available. Frames are pulled
// without blocking.
func NewDecoderConfig(r io.Reader, cfg Config) (*Decoder, error) {
	br := bufio.NewReader(r)
	info, err := readMetadata(br)
	if err != nil {
		return nil, err
	}
	return newDecoder(br, info, cfg), nil
}

// NewRawDecoder returns a decoder for a bare sequence of frames without
// signature or metadata. Nonzero fields of info fill in what frame headers
// leave to the stream: sample rate, bit depth and channel count. MD5
// verification needs info.MD5.
func NewRawDecoder(r io.Reader, info StreamInfo, cfg Config) *Decoder {
	return newDecoder(r, info, cfg)
}

func newDecoder(r io.Reader, info StreamInfo, cfg Config) *Decoder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = bits.DefaultBufferSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := &Decoder{cfg: cfg, info: info, log: log}
	d.br = bits.NewReader(r, cfg.BufferSize)
	d.sync = syntax.NewSynchronizer(d.br, info.defaults(), cfg.MaxResyncBytes, log)
	if cfg.VerifyMD5 && info.MD5 != [16]byte{} {
		d.md5 = md5.New()
	}
	log.Debug("flac: stream opened",
		"sample_rate", info.SampleRate,
		"channels", info.Channels,
		"bit_depth", info.BitDepth,
		"total_samples", info.TotalSamples,
		"verify_md5", d.md5 != nil,
	)
	return d
}

// Config returns the decoder configuration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// Info returns the stream information.
func (d *Decoder) Info() StreamInfo {
	return d.info
}

// SamplesDecoded returns the number of samples per channel decoded so far.
func (d *Decoder) SamplesDecoded() uint64 {
	return d.samples
}

// Err returns the error that stopped the decoder: io.EOF after a clean end
// of stream, nil while decoding can go on.
func (d *Decoder) Err() error {
	return d.err
}

// NextFrame decodes the next frame.
//
// It returns io.EOF at a clean end of stream and ErrNoData when the source
// has no data right now; the next call resumes. Any other error is fatal
// and returned again by every later call.
func (d *Decoder) NextFrame() (*Frame, error) {
	if d == nil {
		return nil, ErrNilDecoder
	}
	if d.err != nil {
		return nil, d.err
	}
	d.release()

	sf, err := d.sync.Next()
	if err != nil {
		return nil, d.fail(err)
	}

	h := &sf.Header
	f := &Frame{
		FrameInfo: FrameInfo{
			Number:       h.Number,
			Variable:     h.Variable,
			FirstSample:  h.FirstSample(d.nominalBlockSize(h)),
			BlockSize:    h.BlockSize,
			SampleRate:   h.SampleRate,
			BitDepth:     h.BitDepth,
			Channels:     h.Channels(),
			Assignment:   h.Assignment,
			Offset:       sf.Offset,
			Size:         sf.Size,
			SkippedBytes: sf.Skipped,
			CRC16:        sf.CRC16,
		},
		samples: pool.Get(h.Channels() * h.BlockSize),
	}
	if sf.Side != nil {
		other := sf.Channels[1-h.Assignment.SideChannel()]
		_, err = output.ReconstructWide(f.samples, h.Assignment, other, sf.Side, h.BlockSize)
	} else {
		_, err = output.Reconstruct(f.samples, h.Assignment, sf.Channels, h.BlockSize)
	}
	if err != nil {
		f.release()
		return nil, d.fail(fmt.Errorf("frame at byte %d: %w", sf.Offset, err))
	}
	if sf.Skipped > 0 {
		d.log.Debug("flac: resynchronized", "offset", sf.Offset, "skipped", sf.Skipped)
	}
	if d.md5 != nil {
		d.pcm = output.AppendLE(d.pcm[:0], f.samples, uint(h.BitDepth))
		d.md5.Write(d.pcm)
	}
	d.samples += uint64(h.BlockSize)
	d.frame = f
	return f, nil
}

// nominalBlockSize is the block size every frame but the last has in a
// fixed blocking stream.
func (d *Decoder) nominalBlockSize(h *syntax.FrameHeader) int {
	if d.info.MaxBlockSize != 0 && d.info.MinBlockSize == d.info.MaxBlockSize {
		return int(d.info.MaxBlockSize)
	}
	return h.BlockSize
}

func (d *Decoder) release() {
	if d.frame != nil {
		d.frame.release()
		d.frame = nil
	}
}

func (d *Decoder) fail(err error) error {
	if errors.Is(err, ErrNoData) {
		return err
	}
	if err == io.EOF {
		err = d.finish()
	}
	d.err = err
	return err
}

// finish checks the stream MD5 once every frame has been decoded.
func (d *Decoder) finish() error {
	if d.md5 == nil {
		return io.EOF
	}
	var sum [16]byte
	d.md5.Sum(sum[:0])
	if sum != d.info.MD5 {
		d.log.Debug("flac: MD5 mismatch", "stream", fmt.Sprintf("%x", d.info.MD5), "decoded", fmt.Sprintf("%x", sum))
		return fmt.Errorf("%w: stream %x, decoded %x", ErrMD5Mismatch, d.info.MD5, sum)
	}
	return io.EOF
}

// Read fills dst with interleaved samples and returns how many values it
// wrote, always a whole number of samples per channel. It crosses frame
// boundaries until dst is full. Errors from NextFrame are returned once
// Read has no samples left to hand out.
func (d *Decoder) Read(dst []int32) (int, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}
	total := 0
	for len(dst) > 0 {
		if d.frame != nil && d.frame.Remaining() > 0 {
			n := d.frame.Read(dst)
			if n == 0 {
				break
			}
			total += n
			dst = dst[n:]
			continue
		}
		if _, err := d.NextFrame(); err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
	}
	if total == 0 && len(dst) > 0 {
		return 0, io.ErrShortBuffer
	}
	return total, nil
}

// Format returns the stream's channel count and sample rate. A raw decoder
// without stream information reports the last decoded frame's.
func (d *Decoder) Format() *audio.Format {
	f := &audio.Format{NumChannels: int(d.info.Channels), SampleRate: int(d.info.SampleRate)}
	if d.frame != nil {
		if f.NumChannels == 0 {
			f.NumChannels = d.frame.Channels
		}
		if f.SampleRate == 0 {
			f.SampleRate = int(d.frame.SampleRate)
		}
	}
	return f
}

// PCMBuffer fills buf.Data with interleaved samples and returns how many
// were written. At the end of the stream it returns 0 and a nil error.
func (d *Decoder) PCMBuffer(buf *audio.IntBuffer) (int, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}
	if buf == nil {
		return 0, nil
	}
	if cap(d.scratch) < len(buf.Data) {
		d.scratch = make([]int32, len(buf.Data))
	}
	n, err := d.Read(d.scratch[:len(buf.Data)])
	for i, v := range d.scratch[:n] {
		buf.Data[i] = int(v)
	}
	buf.Format = d.Format()
	buf.SourceBitDepth = int(d.info.BitDepth)
	if buf.SourceBitDepth == 0 && d.frame != nil {
		buf.SourceBitDepth = int(d.frame.BitDepth)
	}
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// PCMReader returns a reader of the decoded samples as signed little-endian
// integers, interleaved, in (bit depth + 7) / 8 bytes each.
func (d *Decoder) PCMReader() io.Reader {
	return &pcmReader{d: d}
}

type pcmReader struct {
	d   *Decoder
	buf []byte
	off int
}

func (p *pcmReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	for p.off == len(p.buf) {
		f, err := p.d.NextFrame()
		if err != nil {
			return 0, err
		}
		p.buf = output.AppendLE(p.buf[:0], f.Samples(), uint(f.BitDepth))
		p.off = 0
	}
	n := copy(b, p.buf[p.off:])
	p.off += n
	return n, nil
}

// Close releases the decoder's buffers. It does not close the source.
func (d *Decoder) Close() error {
	if d == nil {
		return ErrNilDecoder
	}
	if d.closed {
		return nil
	}
	d.closed = true
	d.release()
	d.sync.Close()
	d.br.Close()
	if d.err == nil {
		d.err = ErrClosed
	}
	return nil
}
