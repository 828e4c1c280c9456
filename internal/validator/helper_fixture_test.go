package validator_test

import (
	"bytes"
	"strings"
)

const loremSentence = "The Children's Bureau issues this program instruction to state child welfare agencies. "

// article returns an HTML page whose visible body text is at least n characters.
func article(n int, extraBody string) []byte {
	text := strings.Repeat(loremSentence, n/len(loremSentence)+1)
	return []byte(`<!DOCTYPE html>
<html><head><title>Program Instruction</title>
<script>var tracking = "` + strings.Repeat("x", 400) + `";</script>
<style>body { font-family: serif; }</style></head>
<body>
<header><a href="/">Home</a></header>
<nav><ul><li>Programs</li><li>Resources</li></ul></nav>
<main><h1>PI-20-01</h1><p>` + text + `</p>` + extraBody + `</main>
<footer>Administration for Children and Families</footer>
</body></html>`)
}

// shortPage returns an HTML page padded with markup so it passes the size
// floor while carrying little visible text.
func shortPage(body string) []byte {
	return []byte(`<!DOCTYPE html><html><head><title>ACF</title><script>` +
		strings.Repeat("/* padding */ ", 30) + `</script></head><body>` + body + `</body></html>`)
}

func binaryWithMagic(magic string, size int) []byte {
	buf := bytes.Repeat([]byte{0x01, 0xfe, 0x00, 0x7f}, size/4+1)
	copy(buf, magic)
	return buf[:size]
}
