package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	ex := NewExtractor()

	text, err := ex.Extract(context.Background(), []byte("Hello, world.\nSecond line."), TypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.\nSecond line.", text)
}

func TestExtractMarkdown(t *testing.T) {
	ex := NewExtractor()

	text, err := ex.Extract(context.Background(), []byte("# Title\n\nBody text."), TypeMD)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text.", text)
}

func TestExtractCaseInsensitiveFileType(t *testing.T) {
	ex := NewExtractor()

	text, err := ex.Extract(context.Background(), []byte("content"), "TXT")
	require.NoError(t, err)
	assert.Equal(t, "content", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	ex := NewExtractor()

	_, err := ex.Extract(context.Background(), []byte("data"), "xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractInvalidUTF8(t *testing.T) {
	ex := NewExtractor()

	_, err := ex.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, TypeTXT)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestExtractEmptyInputIsNotAnError(t *testing.T) {
	ex := NewExtractor()

	text, err := ex.Extract(context.Background(), []byte("   \n\n  \t "), TypeTXT)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractCanceledContext(t *testing.T) {
	ex := NewExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.Extract(ctx, []byte("content"), TypeTXT)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractCorruptPDF(t *testing.T) {
	ex := NewExtractor()

	_, err := ex.Extract(context.Background(), []byte("not a pdf"), TypePDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestExtractCorruptDOCX(t *testing.T) {
	ex := NewExtractor()

	_, err := ex.Extract(context.Background(), []byte("not a zip archive"), TypeDOCX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "a   b\tc", "a b c"},
		{"windows line endings", "a\r\nb\rc", "a\nb\nc"},
		{"trims line edges", "  a  \n  b  ", "a\nb"},
		{"caps blank runs", "a\n\n\n\n\n\nb", "a\n\n\nb"},
		{"keeps paragraph break", "a\n\nb", "a\n\nb"},
		{"trims surrounding whitespace", "\n\n  a  \n\n", "a"},
		{"empty", "   \n\t\n  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTextFromWordXML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"single paragraph",
			`<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`,
			"Hello world",
		},
		{
			"runs concatenate within a paragraph",
			`<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>world</w:t></w:r></w:p>`,
			"Hello world",
		},
		{
			"paragraphs become lines",
			`<w:p><w:r><w:t>first</w:t></w:r></w:p><w:p><w:r><w:t>second</w:t></w:r></w:p>`,
			"first\nsecond",
		},
		{
			"tag with attributes",
			`<w:p><w:r><w:t xml:space="preserve"> padded </w:t></w:r></w:p>`,
			" padded ",
		},
		{
			"ignores tabs and table properties",
			`<w:p><w:r><w:tab/><w:t>cell</w:t></w:r><w:tcPr></w:tcPr></w:p>`,
			"cell",
		},
		{
			"entities unescaped",
			`<w:p><w:r><w:t>a &amp; b &lt; c</w:t></w:r></w:p>`,
			"a & b < c",
		},
		{
			"empty paragraphs dropped",
			`<w:p></w:p><w:p><w:r><w:t>text</w:t></w:r></w:p><w:p></w:p>`,
			"text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromWordXML(tt.in))
		})
	}
}
