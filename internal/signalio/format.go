// SPDX-License-Identifier: MIT
package signalio

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies an audio container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatFLAC
	FormatOgg
	FormatMP3
	FormatMP4
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatFLAC:
		return "flac"
	case FormatOgg:
		return "ogg"
	case FormatMP3:
		return "mp3"
	case FormatMP4:
		return "mp4"
	default:
		return "unknown"
	}
}

// sniffLen covers the longest signature checked below.
const sniffLen = 12

// detectFormat identifies the container from its leading bytes and falls
// back to the file extension when the header is not recognised.
func detectFormat(header []byte, path string) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(header, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(header, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(header, []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3
	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return FormatMP4
	}
	return formatFromExt(path)
}

func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".flac":
		return FormatFLAC
	case ".ogg", ".oga":
		return FormatOgg
	case ".mp3":
		return FormatMP3
	case ".m4a", ".mp4", ".aac":
		return FormatMP4
	}
	return FormatUnknown
}

// readHeader reads up to sniffLen bytes and rewinds r.
func readHeader(r io.ReadSeeker) ([]byte, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return header[:n], nil
}
