package validator_test

import (
	"testing"

	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestVisibleText(t *testing.T) {
	page := []byte(`<html><head><style>p{}</style><script>alert("x")</script></head>
<body><header>Site header</header><nav><a>Menu</a></nav>
<noscript>Enable JavaScript</noscript>
<p>Tom &amp; Jerry&nbsp;act
   together.</p><footer>Footer text</footer></body></html>`)

	assert.Equal(t, "Tom & Jerry act together.", validator.VisibleText(page))
}

func TestVisibleText_NestedHiddenBlocks(t *testing.T) {
	page := []byte(`<nav><div><nav>inner</nav>still nav</div></nav><p>Body</p>`)
	assert.Equal(t, "Body", validator.VisibleText(page))
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    validator.FileType
	}{
		{"doctype", "  \n<!DOCTYPE html><html></html>", validator.TypeHTML},
		{"xml prolog", "<?xml version=\"1.0\"?><html/>", validator.TypeHTML},
		{"bom then html", "\xef\xbb\xbf<html><body></body></html>", validator.TypeHTML},
		{"body later in sample", "Archived copy\n<body><p>x</p></body>", validator.TypeHTML},
		{"plain text", "Program Instruction PI-20-01", validator.TypeText},
		{"nul bytes", "ab\x00cd", validator.TypeUnknownBinary},
		{"pdf", "%PDF-1.4", validator.TypePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.DetectType([]byte(tt.content)))
		})
	}
}
