package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// sniffSize is how much of the input is inspected before decoding.
	sniffSize = 4096

	// minConfidence filters chardet guesses made from too little evidence.
	minConfidence = 50
)

var boms = []struct {
	prefix []byte
	enc    encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// charsets maps chardet names to decoders. Bank exports in this region are
// usually Big5 or UTF-8; the western charsets cover imported European files.
var charsets = map[string]encoding.Encoding{
	"Big5":         traditionalchinese.Big5,
	"GB-18030":     simplifiedchinese.GB18030,
	"Shift_JIS":    japanese.ShiftJIS,
	"EUC-JP":       japanese.EUCJP,
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8.
//
// A byte order mark wins; otherwise valid UTF-8 passes through untouched,
// then chardet picks among the known charsets and anything else is read
// as Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.enc == nil {
			_, _ = br.Discard(len(bom.prefix))
			return br, nil
		}

		return transform.NewReader(br, bom.enc.NewDecoder()), nil
	}

	if validUTF8Prefix(head) {
		return br, nil
	}

	return transform.NewReader(br, Detect(head).NewDecoder()), nil
}

// Detect guesses the charset of a non-UTF-8 sample.
func Detect(sample []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil && result.Confidence >= minConfidence {
		if enc, ok := charsets[result.Charset]; ok {
			return enc
		}
	}

	return charmap.Windows1252
}

// validUTF8Prefix tolerates a multi-byte rune cut off by the sniff window.
func validUTF8Prefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}

	for cut := 1; cut < utf8.UTFMax && cut <= len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) && !utf8.FullRune(b[len(b)-cut:]) {
			return true
		}
	}

	return false
}
