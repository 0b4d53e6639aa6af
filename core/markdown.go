package core

import (
	"bufio"
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"gitlab.com/golang-commonmark/markdown"
)

var markdownParser *markdown.Markdown = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// editors may embed raw HTML, but no scripts
var articlePolicy = bluemonday.UGCPolicy()

var htmlConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// ImportHTML converts HTML, e.g. pasted from another newsroom system, to Markdown.
func ImportHTML(input string) (string, error) {
	return htmlConverter.ConvertString(input)
}

// RenderMarkdown renders CommonMark and sanitizes the result.
func RenderMarkdown(input string) template.HTML {
	var rendered = renderMarkdown(strings.NewReader(input))
	return template.HTML(articlePolicy.Sanitize(rendered))
}

func renderMarkdown(input io.Reader) string {

	// remove all tabs from the beginning of each line

	var unindentedContent = &bytes.Buffer{}

	lineScanner := bufio.NewScanner(input)
	for lineScanner.Scan() {
		line := strings.TrimLeft(lineScanner.Text(), "\t")
		unindentedContent.WriteString(line)
		unindentedContent.WriteString("\n")
	}

	var result = &bytes.Buffer{}
	markdownParser.Render(result, unindentedContent.Bytes())
	return result.String()
}
