// SPDX-License-Identifier: MIT
/*
Package signalio reads audio files into mono audio.Signal values and writes
them back as 16-bit PCM wave files.

Wave files carrying integer PCM are decoded with go-audio/wav; IEEE float
wave data is read from the same decoder's data chunk as stored. Extensible
wave files are routed by their sub-format. FLAC, Ogg Vorbis and MP3 go
through the beep decoders. Channels are averaged to mono and the result is
resampled to the requested rate.
*/
package signalio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"

	"eqlab/internal/audio"
	"eqlab/internal/log"
)

// Format tags of a wave fmt chunk.
const (
	wavFormatPCM        = 0x0001
	wavFormatFloat      = 0x0003
	wavFormatExtensible = 0xFFFE
)

// extensibleSubFormatOffset is the byte offset of the sub-format GUID in an
// extensible fmt chunk, counted after the format tag.
const extensibleSubFormatOffset = 22

// streamChunk is the number of frames pulled from a beep streamer at once.
const streamChunk = 4096

// Metadata describes a file as stored, before mixdown and resampling.
type Metadata struct {
	Format     Format
	SampleRate int
	Channels   int
	Frames     int
}

// Duration returns the stored length in seconds.
func (m Metadata) Duration() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(m.Frames) / float64(m.SampleRate)
}

// Load decodes path, averages its channels to mono and resamples to
// targetSampleRate. A targetSampleRate <= 0 keeps the native rate.
func Load(path string, targetSampleRate int) (audio.Signal, error) {
	sig, meta, err := decodeFile(path)
	if err != nil {
		return audio.Signal{}, err
	}

	if targetSampleRate > 0 && targetSampleRate != sig.SampleRate {
		log.Debugf("SignalIO: Resampling %s from %d Hz to %d Hz", path, sig.SampleRate, targetSampleRate)
		sig, err = Resample(sig, targetSampleRate)
		if err != nil {
			return audio.Signal{}, &DecodeError{Path: path, Format: meta.Format, Err: err}
		}
	}

	log.Debugf("SignalIO: Loaded %s (%s, %d ch, %d Hz, %d samples at %d Hz)",
		path, meta.Format, meta.Channels, meta.SampleRate, sig.Len(), sig.SampleRate)
	return sig, nil
}

// Info decodes path and reports its stored layout.
func Info(path string) (Metadata, error) {
	_, meta, err := decodeFile(path)
	return meta, err
}

func decodeFile(path string) (audio.Signal, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Signal{}, Metadata{}, &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return audio.Signal{}, Metadata{}, &IOError{Path: path, Op: "read", Err: err}
	}

	format := detectFormat(header, path)
	var (
		sig  audio.Signal
		meta Metadata
	)
	switch format {
	case FormatWAV:
		sig, meta, err = decodeWAV(f)
	case FormatFLAC:
		sig, meta, err = decodeBeep(flac.Decode(f))
	case FormatOgg:
		sig, meta, err = decodeBeep(vorbis.Decode(f))
	case FormatMP3:
		sig, meta, err = decodeBeep(mp3.Decode(f))
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return audio.Signal{}, Metadata{}, &DecodeError{Path: path, Format: format, Err: err}
	}
	meta.Format = format

	if err := sig.Validate(); err != nil {
		return audio.Signal{}, Metadata{}, &DecodeError{Path: path, Format: format, Err: err}
	}
	return sig, meta, nil
}

// decodeWAV reads integer PCM with go-audio/wav and IEEE float samples from
// the decoder's raw data chunk.
func decodeWAV(r io.ReadSeeker) (audio.Signal, Metadata, error) {
	encoding, err := wavEncoding(r)
	if err != nil {
		return audio.Signal{}, Metadata{}, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return audio.Signal{}, Metadata{}, err
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Signal{}, Metadata{}, errors.New("invalid wave header")
	}

	channels := int(dec.NumChans)
	var samples []float64
	switch encoding {
	case wavFormatPCM:
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return audio.Signal{}, Metadata{}, fmt.Errorf("read PCM data: %w", err)
		}
		samples = mixdownInts(buf, channels, int(dec.BitDepth))
	case wavFormatFloat:
		samples, err = decodeFloatPCM(dec, channels)
		if err != nil {
			return audio.Signal{}, Metadata{}, err
		}
	default:
		return audio.Signal{}, Metadata{}, fmt.Errorf("%w: wave encoding %#04x", ErrUnsupportedFormat, encoding)
	}

	return audio.Signal{Samples: samples, SampleRate: int(dec.SampleRate)},
		Metadata{SampleRate: int(dec.SampleRate), Channels: channels, Frames: len(samples)}, nil
}

// wavEncoding returns the format tag of the fmt chunk. Extensible files
// report the tag embedded in their sub-format GUID.
func wavEncoding(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	if p.Format != riff.WavFormatID {
		return 0, fmt.Errorf("RIFF form %q is not WAVE", p.Format[:])
	}

	for {
		chunk, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("find fmt chunk: %w", err)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		var tag uint16
		if err := chunk.ReadLE(&tag); err != nil {
			return 0, fmt.Errorf("read format tag: %w", err)
		}
		if tag != wavFormatExtensible {
			return tag, nil
		}
		if chunk.Size < 2+extensibleSubFormatOffset+2 {
			return 0, fmt.Errorf("extensible fmt chunk is %d bytes", chunk.Size)
		}

		var skip [extensibleSubFormatOffset]byte
		if err := chunk.ReadLE(&skip); err != nil {
			return 0, fmt.Errorf("read extensible fmt chunk: %w", err)
		}
		var sub uint16
		if err := chunk.ReadLE(&sub); err != nil {
			return 0, fmt.Errorf("read extensible sub-format: %w", err)
		}
		return sub, nil
	}
}

// decodeFloatPCM reads 32 or 64-bit little-endian float frames and averages
// each frame. Values are kept as stored.
func decodeFloatPCM(dec *wav.Decoder, channels int) ([]float64, error) {
	width := int(dec.BitDepth) / 8
	if width != 4 && width != 8 {
		return nil, fmt.Errorf("%w: %d-bit float wave", ErrUnsupportedFormat, dec.BitDepth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("find PCM data: %w", err)
	}
	if dec.PCMChunk == nil {
		return nil, errors.New("wave file has no data chunk")
	}

	raw, err := io.ReadAll(io.LimitReader(dec.PCMChunk, int64(dec.PCMSize)))
	if err != nil {
		return nil, fmt.Errorf("read PCM data: %w", err)
	}

	frameSize := width * channels
	mono := make([]float64, len(raw)/frameSize)
	for i := range mono {
		frame := raw[i*frameSize:]
		var sum float64
		for ch := range channels {
			b := frame[ch*width:]
			if width == 4 {
				sum += float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			} else {
				sum += math.Float64frombits(binary.LittleEndian.Uint64(b))
			}
		}
		mono[i] = sum / float64(channels)
	}
	return mono, nil
}

// mixdownInts scales integer PCM to [-1, 1) and averages each frame.
// 8-bit wave data is unsigned around 128.
func mixdownInts(buf *goaudio.IntBuffer, channels, bitDepth int) []float64 {
	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := range mono {
		var sum float64
		for ch := range channels {
			sum += (float64(buf.Data[i*channels+ch]) - offset) / scale
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// decodeBeep drains a beep streamer into a mono signal. Beep always
// delivers stereo frames; mono sources carry the same value in both.
func decodeBeep(s beep.StreamSeekCloser, format beep.Format, err error) (audio.Signal, Metadata, error) {
	if err != nil {
		return audio.Signal{}, Metadata{}, err
	}
	defer s.Close()

	mono := make([]float64, 0, max(s.Len(), 0))
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			mono = append(mono, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return audio.Signal{}, Metadata{}, err
	}

	rate := int(format.SampleRate)
	return audio.Signal{Samples: mono, SampleRate: rate},
		Metadata{SampleRate: rate, Channels: format.NumChannels, Frames: len(mono)}, nil
}
