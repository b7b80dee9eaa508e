// Package textnorm rewrites raw report files into canonical UTF-8 before any
// extraction task runs: encoding detection by ranked confidence scoring,
// decoding with fallback across candidates, and a total, idempotent
// substitution of non-portable punctuation.
package textnorm

import (
	"bytes"
	"errors"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrEncodingUnresolvable is returned when no candidate encoding decodes the
// raw bytes above the minimum confidence threshold. Per-file and recoverable
// at the batch level: the file is skipped and reported.
var ErrEncodingUnresolvable = errors.New("no candidate encoding resolves the file")

// minConfidence is the floor below which a candidate is not even attempted.
const minConfidence = 30

// Detection is one ranked encoding candidate for a raw byte sequence.
type Detection struct {
	Encoding   string
	Confidence int // 0-100
}

// Candidate encoding names, in preference order for equal confidence.
const (
	encUTF8SIG = "utf-8-sig"
	encUTF8    = "utf-8"
	encUTF16LE = "utf-16le"
	encUTF16BE = "utf-16be"
	encCP1252  = "cp1252"
	encLatin1  = "latin-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Bytes with no assignment in Windows-1252. Their presence disqualifies the
// cp1252 candidate entirely, matching strict decoder behavior.
var cp1252Undefined = [256]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

// Detect scores every known candidate encoding against raw and returns the
// candidates at or above the confidence threshold, highest first. The
// ordering is deterministic: ties keep the fixed preference order above.
func Detect(raw []byte) []Detection {
	var out []Detection
	add := func(enc string, conf int) {
		if conf >= minConfidence {
			out = append(out, Detection{Encoding: enc, Confidence: conf})
		}
	}

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		add(encUTF8SIG, 100)
	case bytes.HasPrefix(raw, bomUTF16LE):
		add(encUTF16LE, 100)
	case bytes.HasPrefix(raw, bomUTF16BE):
		add(encUTF16BE, 100)
	}

	if utf8.Valid(raw) && !bytes.HasPrefix(raw, bomUTF8) {
		if isASCII(raw) {
			add(encUTF8, 98)
		} else {
			add(encUTF8, 95)
		}
	}

	if !hasCP1252Undefined(raw) {
		add(encCP1252, 70)
	}

	// Latin-1 decodes any byte sequence, so its score is discounted by the
	// density of C1 control bytes: text that is mostly control characters is
	// treated as undecodable rather than silently mangled.
	add(encLatin1, 55-c1Penalty(raw))

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// Decode picks the highest-confidence candidate that decodes raw cleanly,
// falling back through the ranked list. Returns the decoded text and the
// encoding name used, or ErrEncodingUnresolvable when every candidate fails.
func Decode(raw []byte) (string, string, error) {
	for _, d := range Detect(raw) {
		text, err := decodeAs(raw, d.Encoding)
		if err == nil {
			return text, d.Encoding, nil
		}
	}
	return "", "", ErrEncodingUnresolvable
}

func decodeAs(raw []byte, enc string) (string, error) {
	switch enc {
	case encUTF8SIG:
		body := bytes.TrimPrefix(raw, bomUTF8)
		if !utf8.Valid(body) {
			return "", errors.New("invalid UTF-8 after BOM")
		}
		return string(body), nil
	case encUTF8:
		if !utf8.Valid(raw) {
			return "", errors.New("invalid UTF-8")
		}
		return string(raw), nil
	case encUTF16LE:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		b, err := dec.Bytes(raw)
		return string(b), err
	case encUTF16BE:
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		b, err := dec.Bytes(raw)
		return string(b), err
	case encCP1252:
		if hasCP1252Undefined(raw) {
			return "", errors.New("byte undefined in cp1252")
		}
		b, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		return string(b), err
	case encLatin1:
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		return string(b), err
	}
	return "", errors.New("unknown encoding " + enc)
}

func isASCII(raw []byte) bool {
	for _, b := range raw {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

func hasCP1252Undefined(raw []byte) bool {
	for _, b := range raw {
		if cp1252Undefined[b] {
			return true
		}
	}
	return false
}

// c1Penalty returns the percentage of bytes falling in the C1 control range
// (0x80-0x9F), capped at 55 so the latin-1 score bottoms out at zero.
func c1Penalty(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	var c1 int
	for _, b := range raw {
		if b >= 0x80 && b <= 0x9F {
			c1++
		}
	}
	p := c1 * 100 / len(raw)
	if p > 55 {
		p = 55
	}
	return p
}
