package flac

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/mewkiz/flac/meta"
)

var (
	signature     = []byte("fLaC")
	id3Signature  = []byte("ID3")
	id3FooterFlag = byte(0x10)
)

// readMetadata reads the stream signature and the metadata blocks, keeping
// STREAMINFO and skipping the rest. br is left at the first frame.
//
// Source: RFC 9639 §6, §8
func readMetadata(br *bufio.Reader) (StreamInfo, error) {
	var sig [4]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil {
		return StreamInfo{}, fmt.Errorf("flac: reading signature: %w", err)
	}
	if bytes.Equal(sig[:3], id3Signature) {
		if err := skipID3v2(br); err != nil {
			return StreamInfo{}, fmt.Errorf("flac: skipping ID3v2 tag: %w", err)
		}
		if _, err := io.ReadFull(br, sig[:]); err != nil {
			return StreamInfo{}, fmt.Errorf("flac: reading signature: %w", err)
		}
	}
	if !bytes.Equal(sig[:], signature) {
		return StreamInfo{}, ErrSignature
	}

	block, err := meta.Parse(br)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("flac: parsing STREAMINFO: %w", err)
	}
	si, ok := block.Body.(*meta.StreamInfo)
	if !ok {
		return StreamInfo{}, ErrStreamInfo
	}
	for !block.IsLast {
		block, err = meta.New(br)
		if err != nil {
			return StreamInfo{}, fmt.Errorf("flac: reading metadata block: %w", err)
		}
		if err := block.Skip(); err != nil {
			return StreamInfo{}, fmt.Errorf("flac: skipping metadata block: %w", err)
		}
	}

	info := StreamInfo{
		MinBlockSize: si.BlockSizeMin,
		MaxBlockSize: si.BlockSizeMax,
		MinFrameSize: si.FrameSizeMin,
		MaxFrameSize: si.FrameSizeMax,
		SampleRate:   si.SampleRate,
		Channels:     si.NChannels,
		BitDepth:     si.BitsPerSample,
		TotalSamples: si.NSamples,
		MD5:          si.MD5sum,
	}
	if info.Channels == 0 {
		return StreamInfo{}, ErrNoChannels
	}
	return info, nil
}

// skipID3v2 skips the rest of an ID3v2 tag whose first four bytes have been
// read.
func skipID3v2(br *bufio.Reader) error {
	// minor version, flags, synchsafe size
	var h [6]byte
	if _, err := io.ReadFull(br, h[:]); err != nil {
		return err
	}
	size := int(h[2]&0x7F)<<21 | int(h[3]&0x7F)<<14 | int(h[4]&0x7F)<<7 | int(h[5]&0x7F)
	if h[1]&id3FooterFlag != 0 {
		size += 10
	}
	_, err := br.Discard(size)
	return err
}
