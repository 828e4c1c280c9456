package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

/*
Responsibilities
- Turn an HTML page kept as a document into readable Markdown
- Produce a print-style standalone HTML page from that Markdown
- Write both beside the capture as <stem>.md and <stem>.print.html

Rendering is a convenience. Callers log a failure and move on; it never
changes the outcome of a reference.
*/

const (
	MarkdownExt  = ".md"
	PrintHTMLExt = ".print.html"
)

type Output struct {
	Title     string
	Markdown  []byte
	PrintHTML []byte
}

type Result struct {
	MarkdownPath  string
	PrintHTMLPath string
}

type Renderer struct {
	metadataSink metadata.MetadataSink
}

func NewRenderer(metadataSink metadata.MetadataSink) *Renderer {
	return &Renderer{metadataSink: metadataSink}
}

// RenderFile renders the capture at capturePath and writes the outputs next
// to it.
func (r *Renderer) RenderFile(capturePath string) (Result, failure.ClassifiedError) {
	result, err := renderFile(capturePath)
	if err != nil {
		r.metadataSink.RecordError(
			time.Now(),
			"render",
			"Renderer.RenderFile",
			mapRenderErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, capturePath),
			},
		)
		return Result{}, err
	}
	for _, path := range []string{result.MarkdownPath, result.PrintHTMLPath} {
		r.metadataSink.RecordArtifact(
			metadata.ArtifactRendered,
			path,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
	}
	return result, nil
}

func renderFile(capturePath string) (Result, *RenderError) {
	body, err := os.ReadFile(capturePath)
	if err != nil {
		return Result{}, &RenderError{Message: err.Error(), Cause: ErrCauseReadFailure}
	}

	output, renderErr := Render(body)
	if renderErr != nil {
		return Result{}, renderErr
	}

	stem := strings.TrimSuffix(capturePath, filepath.Ext(capturePath))
	result := Result{
		MarkdownPath:  stem + MarkdownExt,
		PrintHTMLPath: stem + PrintHTMLExt,
	}
	if err := os.WriteFile(result.MarkdownPath, output.Markdown, 0644); err != nil {
		return Result{}, &RenderError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
	}
	if err := os.WriteFile(result.PrintHTMLPath, output.PrintHTML, 0644); err != nil {
		return Result{}, &RenderError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
	}
	return result, nil
}

// Render is the pure HTML -> Markdown -> print HTML pipeline.
func Render(body []byte) (Output, *RenderError) {
	extracted, err := extract(body)
	if err != nil {
		return Output{}, err
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, convErr := conv.ConvertNode(extracted.content)
	if convErr != nil {
		return Output{}, &RenderError{Message: convErr.Error(), Cause: ErrCauseConversionFailure}
	}
	if len(strings.TrimSpace(string(md))) == 0 {
		return Output{}, &RenderError{Message: "conversion produced no text", Cause: ErrCauseNoContent}
	}

	return Output{
		Title:     extracted.title,
		Markdown:  md,
		PrintHTML: printPage(extracted.title, md),
	}, nil
}

const printStyle = `body { font-family: Georgia, serif; max-width: 46em; margin: 2em auto; line-height: 1.5; color: #111; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 0.25em 0.5em; }
a { color: inherit; }
@media print { body { margin: 0; max-width: none; } a::after { content: " (" attr(href) ")"; font-size: 80%; } }`

func printPage(title string, md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	fragment := markdown.ToHTML(md, p, renderer)

	if title == "" {
		title = "Document"
	}
	return []byte(fmt.Sprintf(
		"<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title),
		printStyle,
		fragment,
	))
}
