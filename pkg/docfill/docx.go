package docfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// DocxReader handles reading and parsing DOCX files
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewTemplateStructureError("", "failed to read zip container", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	// Index all parts by name
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	// Check if this is a valid DOCX file by looking for required parts
	if _, ok := dr.Parts["word/document.xml"]; !ok {
		return nil, NewTemplateStructureError("word/document.xml", "missing part, not a valid DOCX file", nil)
	}

	return dr, nil
}

// GetDocumentXML retrieves the content of word/document.xml
func (dr *DocxReader) GetDocumentXML() ([]byte, error) {
	return dr.GetPart("word/document.xml")
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// ListParts returns a list of all part names in the DOCX
func (dr *DocxReader) ListParts() []string {
	parts := make([]string, 0, len(dr.Parts))
	for name := range dr.Parts {
		parts = append(parts, name)
	}
	return parts
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	reader := bytes.NewReader(content)
	return NewDocxReader(reader, int64(len(content)))
}

// writeDocx rebuilds a DOCX container from the original source bytes, copying
// every part untouched except word/document.xml, which is replaced with the
// populated document XML.
func writeDocx(source []byte, documentXML []byte) ([]byte, error) {
	reader := bytes.NewReader(source)
	zipReader, err := zip.NewReader(reader, int64(len(source)))
	if err != nil {
		return nil, NewTemplateStructureError("", "failed to read source zip", err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for _, file := range zipReader.File {
		fw, err := w.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", file.Name, err)
		}

		if file.Name == "word/document.xml" {
			if _, err := fw.Write(documentXML); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", file.Name, err)
			}
			continue
		}

		fr, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
		}
		if _, err := io.Copy(fw, fr); err != nil {
			fr.Close()
			return nil, fmt.Errorf("failed to copy %s: %w", file.Name, err)
		}
		fr.Close()
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output: %w", err)
	}

	return buf.Bytes(), nil
}
