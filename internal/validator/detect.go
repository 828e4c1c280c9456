package validator

import (
	"bytes"
	"unicode/utf8"
)

var signatures = []struct {
	magic []byte
	kind  FileType
}{
	{[]byte("%PDF"), TypePDF},
	{[]byte("PK\x03\x04"), TypeZipBased},
	{[]byte("\xd0\xcf\x11"), TypeOLE},
	{[]byte("\x89PNG"), TypePNG},
	{[]byte("\xff\xd8\xff"), TypeJPG},
	{[]byte("GIF8"), TypeGIF},
	{[]byte(`{\`), TypeRTF},
}

var markupPrefixes = [][]byte{
	[]byte("<!doctype"),
	[]byte("<html"),
	[]byte("<?xml"),
}

var utf8BOM = []byte("\xef\xbb\xbf")

const sniffLen = 2000

// DetectType identifies content from its leading bytes, ignoring any
// declared extension.
func DetectType(content []byte) FileType {
	for _, sig := range signatures {
		if bytes.HasPrefix(content, sig.magic) {
			return sig.kind
		}
	}

	sample := content
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}

	head := bytes.ToLower(bytes.TrimSpace(bytes.TrimPrefix(sample, utf8BOM)))
	for _, prefix := range markupPrefixes {
		if bytes.HasPrefix(head, prefix) {
			return TypeHTML
		}
	}

	if looksBinary(sample) {
		return TypeUnknownBinary
	}
	if bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<body")) {
		return TypeHTML
	}
	return TypeText
}

// looksBinary treats NUL bytes or a high share of invalid UTF-8 as binary.
func looksBinary(sample []byte) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	invalid := 0
	for i := 0; i < len(sample); {
		r, size := utf8.DecodeRune(sample[i:])
		if r == utf8.RuneError && size == 1 {
			// a rune cut off by the sample boundary is not evidence
			if len(sample)-i < utf8.UTFMax && !utf8.FullRune(sample[i:]) {
				break
			}
			invalid++
		}
		i += size
	}
	return invalid*10 > len(sample)
}
