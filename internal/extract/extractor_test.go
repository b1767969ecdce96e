package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported("report.pdf"))
	assert.True(t, Supported("REPORT.PDF"))
	assert.True(t, Supported("notes.docx"))
	assert.True(t, Supported("readme.txt"))
	assert.False(t, Supported("sheet.xlsx"))
	assert.False(t, Supported("archive.zip"))
	assert.False(t, Supported("noextension"))
}

func TestExtractBytes_PlainText(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte("hello world"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractBytes_PlainTextInvalidUTF8(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte{'o', 'k', 0xff, 0xfe}, ".txt")
	require.NoError(t, err)
	assert.Contains(t, text, "ok")
}

func TestExtractBytes_UnsupportedExtension(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("data"), ".xlsx")
	require.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractBytes_DOCX(t *testing.T) {
	e := NewExtractor()
	doc := buildDOCX(t, `<w:document><w:body>`+
		`<w:p w:rsidR="0"><w:r><w:t>Hello</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">world</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := e.ExtractBytes(doc, ".docx")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestExtractBytes_DOCXNotAZip(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("plainly not a zip"), ".docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a zip")
}

func TestExtractBytes_DOCXMissingDocument(t *testing.T) {
	e := NewExtractor()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = e.ExtractBytes(buf.Bytes(), ".docx")
	require.Error(t, err)
}

func TestExtractBytes_PDFInvalid(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("not a pdf"), ".pdf")
	require.Error(t, err)
}
