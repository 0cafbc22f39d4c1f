package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX reads a Word document and strips the WordprocessingML
// markup down to its text runs. Paragraph boundaries become newlines.
func extractDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()
	return textFromWordXML(content), nil
}

// textFromWordXML collects the character data inside <w:t> runs,
// one output line per <w:p> paragraph.
func textFromWordXML(content string) string {
	var lines []string
	for _, paragraph := range strings.Split(content, "</w:p>") {
		var line strings.Builder
		rest := paragraph
		for {
			open := strings.Index(rest, "<w:t")
			if open < 0 || open+4 >= len(rest) {
				break
			}
			// Skip other w:t-prefixed tags such as <w:tab/> and <w:tcPr>.
			if c := rest[open+4]; c != '>' && c != ' ' && c != '/' {
				rest = rest[open+4:]
				continue
			}
			// The tag may carry attributes, e.g. <w:t xml:space="preserve">.
			end := strings.Index(rest[open:], ">")
			if end < 0 {
				break
			}
			if rest[open+end-1] == '/' {
				rest = rest[open+end+1:]
				continue
			}
			rest = rest[open+end+1:]
			closing := strings.Index(rest, "</w:t>")
			if closing < 0 {
				break
			}
			line.WriteString(unescapeXML(rest[:closing]))
			rest = rest[closing+len("</w:t>"):]
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return strings.Join(lines, "\n")
}

func unescapeXML(s string) string {
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return r.Replace(s)
}
