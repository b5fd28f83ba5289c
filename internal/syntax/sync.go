package syntax

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/llehouerou/go-flac/internal/bits"
	"github.com/llehouerou/go-flac/internal/pool"
)

// State is the position of the Synchronizer within a frame.
type State uint8

// Synchronizer states.
const (
	StateSearching State = iota
	StateHeader
	StateSubframes
	StateFooter
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateHeader:
		return "header"
	case StateSubframes:
		return "subframes"
	case StateFooter:
		return "footer"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// MaxChannels is the most channels a frame can carry.
const MaxChannels = 8

// Frame is a decoded frame before channel reconstruction. It is owned by
// the Synchronizer and valid until the next call to Next or Close.
type Frame struct {
	Header    FrameHeader
	Subframes []Subframe

	// Channels holds BlockSize samples per channel as stored, so a side
	// channel is still the difference signal.
	Channels [][]int32
	// Side holds the side channel of a 32-bit frame, which needs 33 bits.
	// Its entry in Channels is nil then.
	Side []int64

	// Offset is the stream position of the sync code in bytes.
	Offset uint64
	// Size is the frame length in bytes, footer included.
	Size int
	// Skipped counts bytes discarded while searching for this frame.
	Skipped int
	// CRC16 is the verified footer checksum.
	CRC16 uint16
}

// Synchronizer finds and decodes frames from a bit reader.
//
// A candidate sync code whose header is malformed or fails its CRC-8 is
// skipped and the search resumes one byte after it. Once a header is
// accepted every later failure is fatal, CRC-16 mismatch included. When the
// reader runs dry mid-frame, Next rewinds to the sync code and returns
// bits.ErrNoData; a later call decodes the frame again from its header.
type Synchronizer struct {
	r         *bits.Reader
	def       StreamDefaults
	log       *slog.Logger
	maxResync int

	state   State
	need    uint64
	skipped int

	frame     Frame
	subframes [MaxChannels]Subframe
	bufs      [MaxChannels][]int32
	chans     [MaxChannels][]int32
	wide      []int64

	err error
}

// NewSynchronizer returns a Synchronizer reading frames from r. maxResync
// bounds the bytes skipped while searching for one frame; 0 means no bound.
// A nil logger discards.
func NewSynchronizer(r *bits.Reader, def StreamDefaults, maxResync int, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{r: r, def: def, log: log, maxResync: maxResync}
}

// State returns the current state.
func (s *Synchronizer) State() State {
	return s.state
}

// Err returns the fatal error that stopped the Synchronizer, if any.
func (s *Synchronizer) Err() error {
	return s.err
}

// Next decodes the next frame.
//
// It returns io.EOF at a clean end of stream, bits.ErrNoData when the
// source has no data right now, and a fatal error otherwise. Fatal errors
// are sticky.
func (s *Synchronizer) Next() (*Frame, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.need > 0 {
		if !s.r.Ensure(s.need) && !s.r.EndOfStream() && s.r.Err() == nil {
			return nil, bits.ErrNoData
		}
		s.need = 0
	}

	for {
		switch s.state {
		case StateSearching:
			if err := s.search(); err != nil {
				return nil, s.fail(err)
			}

		case StateHeader:
			h, err := ParseHeader(s.r, s.def)
			switch {
			case errors.Is(err, bits.ErrNoData):
				return nil, s.retry()
			case err != nil && s.r.Err() != nil:
				return nil, s.fail(err)
			case err != nil:
				// A header cut short by the end of the stream is as
				// good as a bad one: trailing junk, not a frame.
				if err := s.reject(err); err != nil {
					return nil, s.fail(err)
				}
				continue
			}
			if err := s.accept(h); err != nil {
				return nil, s.fail(err)
			}

		case StateSubframes:
			if err := s.readSubframes(); err != nil {
				if errors.Is(err, bits.ErrNoData) {
					return nil, s.retry()
				}
				return nil, s.fail(err)
			}
			s.state = StateFooter

		case StateFooter:
			if err := s.readFooter(); err != nil {
				if errors.Is(err, bits.ErrNoData) {
					return nil, s.retry()
				}
				return nil, s.fail(err)
			}
			s.state = StateDone

		case StateDone:
			s.r.Unmark()
			s.skipped = 0
			s.state = StateSearching
			s.log.Debug("flac: frame decoded",
				"offset", s.frame.Offset,
				"size", s.frame.Size,
				"block_size", s.frame.Header.BlockSize,
				"channels", s.frame.Header.Assignment.String(),
			)
			return &s.frame, nil
		}
	}
}

// search scans byte by byte for a sync code and marks it. Frames start on
// byte boundaries, so unaligned bit patterns are never candidates.
func (s *Synchronizer) search() error {
	for {
		v, ok := s.r.PeekBits(16)
		if !ok {
			if s.r.EndOfStream() && s.r.Err() == nil {
				if s.skipped > 0 {
					s.log.Debug("flac: trailing bytes without frame", "bytes", s.skipped)
				}
				return io.EOF
			}
			return s.r.Underrun()
		}
		if v&syncMask == SyncCode {
			s.frame.Offset = s.r.ConsumedBits() / 8
			s.r.Mark()
			s.r.SetCRC16(0)
			s.state = StateHeader
			return nil
		}
		s.r.ReadUint8()
		s.skipped++
		if s.maxResync > 0 && s.skipped > s.maxResync {
			return fmt.Errorf("%w (%d bytes)", ErrLostSync, s.skipped)
		}
	}
}

// reject drops a false sync code and resumes the search after its first
// byte.
func (s *Synchronizer) reject(cause error) error {
	s.log.Debug("flac: header rejected", "offset", s.frame.Offset, "err", cause)
	s.r.Rewind()
	s.r.Unmark()
	s.r.ReadUint8()
	s.skipped++
	s.state = StateSearching
	if s.maxResync > 0 && s.skipped > s.maxResync {
		return fmt.Errorf("%w (%d bytes)", ErrLostSync, s.skipped)
	}
	return nil
}

func (s *Synchronizer) accept(h FrameHeader) error {
	if s.def.Channels != 0 && h.Channels() != s.def.Channels {
		return fmt.Errorf("%w: frame has %d, stream %d", ErrChannelCount, h.Channels(), s.def.Channels)
	}
	s.frame.Header = h
	s.state = StateSubframes
	return nil
}

// retry rewinds to the sync code so the frame is parsed again once more
// data arrives.
func (s *Synchronizer) retry() error {
	s.r.Rewind()
	s.r.SetCRC16(0)
	s.state = StateHeader
	s.need = s.r.BufferedBits() + 1
	return bits.ErrNoData
}

func (s *Synchronizer) fail(err error) error {
	if errors.Is(err, bits.ErrNoData) {
		return err
	}
	if errors.Is(err, io.EOF) && s.state == StateSearching {
		return err
	}
	if s.state >= StateHeader {
		err = fmt.Errorf("frame at byte %d: %w", s.frame.Offset, err)
	}
	s.err = err
	return err
}

func (s *Synchronizer) readSubframes() error {
	h := &s.frame.Header
	n := h.Channels()
	side := h.Assignment.SideChannel()
	s.frame.Side = nil
	for ch := range n {
		if cap(s.bufs[ch]) < h.BlockSize {
			pool.Put(s.bufs[ch])
			s.bufs[ch] = pool.Get(h.BlockSize)
		}
		buf := s.bufs[ch][:h.BlockSize]

		depth := uint(h.BitDepth)
		if ch == side {
			depth++
		}
		sf := &s.subframes[ch]
		if err := ReadSubframe(s.r, sf, depth, h.BlockSize); err != nil {
			return fmt.Errorf("subframe %d: %w", ch, err)
		}
		if sf.Wide() {
			if cap(s.wide) < h.BlockSize {
				s.wide = make([]int64, h.BlockSize)
			}
			wide := s.wide[:h.BlockSize]
			got, err := sf.DecodeWide(s.r, wide, buf)
			if err != nil {
				return fmt.Errorf("subframe %d: %w", ch, err)
			}
			if got != h.BlockSize {
				return fmt.Errorf("subframe %d: %w", ch, ErrSubframeExhausted)
			}
			s.frame.Side = wide
			s.chans[ch] = nil
			continue
		}
		got, err := sf.Decode(s.r, buf)
		if err != nil {
			return fmt.Errorf("subframe %d: %w", ch, err)
		}
		if got != h.BlockSize {
			return fmt.Errorf("subframe %d: %w", ch, ErrSubframeExhausted)
		}
		s.chans[ch] = buf
	}
	s.frame.Subframes = s.subframes[:n]
	s.frame.Channels = s.chans[:n]
	return nil
}

func (s *Synchronizer) readFooter() error {
	if err := s.r.ReadZeroPadding(); err != nil {
		return err
	}
	got := s.r.CRC16()
	want, ok := s.r.ReadBits(16)
	if !ok {
		return s.r.Underrun()
	}
	if uint16(want) != got {
		return fmt.Errorf("%w: stored %#04x, computed %#04x", ErrFrameCRC, want, got)
	}
	s.frame.CRC16 = got
	s.frame.Size = int(s.r.ConsumedBits()/8 - s.frame.Offset)
	s.frame.Skipped = s.skipped
	return nil
}

// Close releases the channel buffers.
func (s *Synchronizer) Close() {
	for i, b := range s.bufs {
		if b != nil {
			pool.Put(b)
			s.bufs[i] = nil
		}
	}
	s.wide = nil
	s.frame = Frame{}
	if s.err == nil {
		s.err = ErrClosed
	}
}
