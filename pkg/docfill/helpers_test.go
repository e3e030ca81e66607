package docfill

import (
	"archive/zip"
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// wrapBody builds a minimal word/document.xml around body content
func wrapBody(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		inner +
		`</w:body></w:document>`
}

func headingXML(level int, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="Heading` + strconv.Itoa(level) + `"/></w:pPr>` +
		`<w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func paraXML(text string) string {
	if text == "" {
		return `<w:p></w:p>`
	}
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

// tableXML builds a table from rows of cell texts; the first row is the header
func tableXML(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblGrid>`)
	if len(rows) > 0 {
		for range rows[0] {
			sb.WriteString(`<w:gridCol w:w="2000"/>`)
		}
	}
	sb.WriteString(`</w:tblGrid>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>`)
		for _, cell := range row {
			sb.WriteString(`<w:tc>` + paraXML(cell) + `</w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

// buildTestDocx assembles an in-memory DOCX container around a document.xml
func buildTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	f, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`))
	require.NoError(t, err)

	f, err = w.Create("_rels/.rels")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`))
	require.NoError(t, err)

	f, err = w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// parseOutputDocument extracts and parses word/document.xml from container bytes
func parseOutputDocument(t *testing.T, docxBytes []byte) *Document {
	t.Helper()

	reader, err := NewDocxReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	require.NoError(t, err)

	docXML, err := reader.GetDocumentXML()
	require.NoError(t, err)

	doc, err := ParseDocument(bytes.NewReader(docXML))
	require.NoError(t, err)
	return doc
}

// testEngine returns an engine with a fixed configuration so date rendering
// does not depend on the environment
func testEngine() *Engine {
	config := DefaultConfig()
	config.LogLevel = "off"
	return NewWithConfig(config)
}
