package scriptfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the byte-order mark a script was stored with.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-bom"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Script is a script file split into lines. Every line keeps its own
// terminator, so joining Lines gives back the decoded text exactly.
type Script struct {
	Path     string
	Lines    []string
	Encoding Encoding
	// Mode is the permission bits of the file Read loaded; 0 when unknown.
	Mode os.FileMode
}

// Read loads and decodes a script file.
func Read(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.Path = path
	s.Mode = info.Mode().Perm()
	return s, nil
}

// Decode splits raw file content into lines, stripping and remembering a
// byte-order mark. Files without one are taken as UTF-8 byte for byte.
func Decode(data []byte) (*Script, error) {
	enc := detect(data)

	text := string(data)
	if codec := codecFor(enc); codec != nil {
		decoded, err := codec.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		text = string(decoded)
	}

	return &Script{Lines: SplitLines(text), Encoding: enc}, nil
}

// Encode joins the lines and re-applies the original byte-order mark.
func (s *Script) Encode() ([]byte, error) {
	text := strings.Join(s.Lines, "")
	codec := codecFor(s.Encoding)
	if codec == nil {
		return []byte(text), nil
	}
	return codec.NewEncoder().Bytes([]byte(text))
}

// Write encodes the script and replaces path atomically. The new file gets
// the script's own Mode, else the mode of the file being replaced, else 0644.
func Write(path string, s *Script) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rpy-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// SplitLines splits text after every "\n". A final line without a
// terminator is kept; an empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func detect(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	}
	return EncodingUTF8
}

func codecFor(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return nil
}
