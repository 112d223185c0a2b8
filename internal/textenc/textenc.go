// Package textenc decodes raw file bytes into text using an ordered fallback
// chain of encodings. The resolver picks the most plausible mapping; it does
// not guarantee byte-for-byte recovery of arbitrarily encoded files.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names recorded on decoded nodes.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-sig"
	EncodingUTF16LE     = "utf-16-le"
	EncodingUTF16BE     = "utf-16-be"
	EncodingLatin1      = "latin-1"
	EncodingWindows1252 = "windows-1252"
)

// headerProbeSize bounds the number of bytes inspected when detecting an
// encoding before the full content is decoded.
const headerProbeSize = 4096

// ErrDecodeFailed is returned in strict mode when content selected for UTF-8
// decoding turns out not to be valid UTF-8. The caller converts it into a
// skipped-file record rather than aborting the run.
var ErrDecodeFailed = errors.New("content is not valid in the detected encoding")

var (
	utf8ByteOrderMark    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEByteOrderMark = []byte{0xFF, 0xFE}
	utf16BEByteOrderMark = []byte{0xFE, 0xFF}
)

// DetectEncoding inspects the first bytes of a file and returns the name of
// the most plausible encoding. Detection order: byte-order marks, strict
// UTF-8, then a single-byte mapping. Content carrying bytes in the 0x80-0x9F
// range is attributed to Windows-1252, where those bytes are printable glyphs
// rather than C1 control characters.
func DetectEncoding(header []byte) string {
	if len(header) == 0 {
		return EncodingUTF8
	}
	if bytes.HasPrefix(header, utf8ByteOrderMark) {
		return EncodingUTF8BOM
	}
	if bytes.HasPrefix(header, utf16LEByteOrderMark) {
		return EncodingUTF16LE
	}
	if bytes.HasPrefix(header, utf16BEByteOrderMark) {
		return EncodingUTF16BE
	}
	if validUTF8IgnoringTruncatedTail(header) {
		return EncodingUTF8
	}
	if containsWindows1252Range(header) {
		return EncodingWindows1252
	}
	return EncodingLatin1
}

// Decode converts raw bytes into text. The encoding is chosen from a header
// probe and the full content is decoded with it. In strict mode a UTF-8
// selection that fails on the full content returns ErrDecodeFailed; otherwise
// decoding silently falls back to a byte-preserving single-byte mapping.
func Decode(rawBytes []byte, strict bool) (string, string, error) {
	header := rawBytes
	if len(header) > headerProbeSize {
		header = header[:headerProbeSize]
	}

	encodingName := DetectEncoding(header)
	switch encodingName {
	case EncodingUTF8, EncodingUTF8BOM:
		content := rawBytes
		if encodingName == EncodingUTF8BOM {
			content = bytes.TrimPrefix(content, utf8ByteOrderMark)
		}
		if utf8.Valid(content) {
			return string(content), encodingName, nil
		}
		if strict {
			return "", encodingName, fmt.Errorf("decoding as %s: %w", encodingName, ErrDecodeFailed)
		}
		return decodeSingleByte(content)
	case EncodingUTF16LE:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), rawBytes, EncodingUTF16LE)
	case EncodingUTF16BE:
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), rawBytes, EncodingUTF16BE)
	case EncodingWindows1252:
		return decodeWith(charmap.Windows1252.NewDecoder(), rawBytes, EncodingWindows1252)
	default:
		return decodeWith(charmap.ISO8859_1.NewDecoder(), rawBytes, EncodingLatin1)
	}
}

// decodeSingleByte picks between Windows-1252 and Latin-1 for content that is
// not valid UTF-8. Both mappings accept every byte, so this step cannot fail.
func decodeSingleByte(rawBytes []byte) (string, string, error) {
	if containsWindows1252Range(rawBytes) {
		return decodeWith(charmap.Windows1252.NewDecoder(), rawBytes, EncodingWindows1252)
	}
	return decodeWith(charmap.ISO8859_1.NewDecoder(), rawBytes, EncodingLatin1)
}

func decodeWith(decoder *encoding.Decoder, rawBytes []byte, encodingName string) (string, string, error) {
	decodedBytes, decodeError := decoder.Bytes(rawBytes)
	if decodeError != nil {
		// Single-byte and UTF-16 decoders replace rather than reject input;
		// an error here indicates an internal transformation failure.
		return "", encodingName, fmt.Errorf("decoding as %s: %w", encodingName, decodeError)
	}
	return string(decodedBytes), encodingName, nil
}

// validUTF8IgnoringTruncatedTail reports whether the header is valid UTF-8
// when a multi-byte rune cut off at the probe boundary is disregarded.
func validUTF8IgnoringTruncatedTail(header []byte) bool {
	trimmed := header
	for trailing := 0; trailing < utf8.UTFMax-1 && len(trimmed) > 0; trailing++ {
		if utf8.Valid(trimmed) {
			return true
		}
		lastByte := trimmed[len(trimmed)-1]
		if lastByte < utf8.RuneSelf {
			break
		}
		trimmed = trimmed[:len(trimmed)-1]
	}
	return utf8.Valid(trimmed)
}

// containsWindows1252Range reports whether any byte falls in the 0x80-0x9F
// range that differentiates Windows-1252 text from Latin-1 text.
func containsWindows1252Range(data []byte) bool {
	for _, byteValue := range data {
		if byteValue >= 0x80 && byteValue <= 0x9F {
			return true
		}
	}
	return false
}
