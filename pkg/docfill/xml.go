package docfill

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document represents a Word document structure
type Document struct {
	XMLName xml.Name   `xml:"document"`
	Body    *Body      `xml:"body"`
	Attrs   []xml.Attr `xml:"-"` // Preserve root element attributes (namespaces)
}

// UnmarshalXML implements custom XML unmarshaling to preserve root attributes
func (doc *Document) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	doc.Attrs = start.Attr

	// Use an anonymous struct to avoid recursive UnmarshalXML calls
	var temp struct {
		XMLName xml.Name `xml:"document"`
		Body    *Body    `xml:"body"`
	}

	if err := d.DecodeElement(&temp, &start); err != nil {
		return err
	}

	doc.XMLName = temp.XMLName
	doc.Body = temp.Body

	return nil
}

// BodyElement represents any element that can appear in a document body
type BodyElement interface {
	isBodyElement()
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement `xml:"-"`
	// SectionProperties at the end of the body (critical for Word compatibility)
	SectionProperties *RawXMLElement `xml:"-"`
}

// RawXMLElement preserves an element we do not model as raw inner XML
type RawXMLElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Content []byte
}

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Properties *ParagraphProperties `xml:"pPr"`
	Runs       []Run                `xml:"r"`
}

// isBodyElement implements the BodyElement interface
func (p Paragraph) isBodyElement() {}

// ParagraphProperties represents paragraph formatting properties
type ParagraphProperties struct {
	Style     *Style     `xml:"pStyle"`
	Alignment *Alignment `xml:"jc"`
}

// Run represents a run of text with common properties
type Run struct {
	Properties *RunProperties `xml:"rPr"`
	Text       *Text          `xml:"t"`
	Break      *Break         `xml:"br"`
}

// RunProperties represents run formatting properties
type RunProperties struct {
	Bold      *Empty          `xml:"b"`
	Italic    *Empty          `xml:"i"`
	Underline *UnderlineStyle `xml:"u"`
	Color     *Color          `xml:"color"`
	Size      *Size           `xml:"sz"`
	Font      *Font           `xml:"rFonts"`
}

// Text represents text content
type Text struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"space,attr,omitempty"`
	Content string   `xml:",chardata"`
}

// Table represents a table in the document
type Table struct {
	Properties *TableProperties `xml:"tblPr"`
	Grid       *TableGrid       `xml:"tblGrid"`
	Rows       []TableRow       `xml:"tr"`
}

// isBodyElement implements the BodyElement interface
func (t Table) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling to preserve element order
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var para Paragraph
				if err := d.DecodeElement(&para, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, &para)
			case "tbl":
				var table Table
				if err := d.DecodeElement(&table, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, &table)
			case "sectPr":
				raw, err := captureRawElement(d, t)
				if err != nil {
					return err
				}
				b.SectionProperties = raw
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				return nil
			}
		}
	}

	return nil
}

// captureRawElement reads an entire element's content as raw XML text
func captureRawElement(d *xml.Decoder, start xml.StartElement) (*RawXMLElement, error) {
	raw := &RawXMLElement{
		XMLName: start.Name,
		Attrs:   start.Attr,
	}

	depth := 1
	var buf strings.Builder

	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}

		switch tt := tok.(type) {
		case xml.StartElement:
			depth++
			buf.WriteString("<")
			writeRawName(&buf, tt.Name)
			for _, attr := range tt.Attr {
				buf.WriteString(" ")
				writeRawName(&buf, attr.Name)
				buf.WriteString(`="`)
				buf.WriteString(attr.Value)
				buf.WriteString(`"`)
			}
			buf.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				buf.WriteString("</")
				writeRawName(&buf, tt.Name)
				buf.WriteString(">")
			}
		case xml.CharData:
			buf.WriteString(string(tt))
		}
	}

	raw.Content = []byte(buf.String())
	return raw, nil
}

func writeRawName(buf *strings.Builder, name xml.Name) {
	if name.Space != "" {
		buf.WriteString(name.Space)
		buf.WriteString(":")
	}
	buf.WriteString(name.Local)
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "p"}}); err != nil {
				return err
			}
		case *Table:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "tbl"}}); err != nil {
				return err
			}
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableRow represents a row in a table
type TableRow struct {
	Properties *TableRowProperties `xml:"trPr"`
	Cells      []TableCell         `xml:"tc"`
}

// TableCell represents a cell in a table
type TableCell struct {
	Properties *TableCellProperties `xml:"tcPr"`
	Paragraphs []Paragraph          `xml:"p"`
}

// Empty represents an empty element (used for boolean properties)
type Empty struct{}

// Style represents a style reference
type Style struct {
	Val string `xml:"val,attr"`
}

// Alignment represents text alignment
type Alignment struct {
	Val string `xml:"val,attr"`
}

// Color represents text color
type Color struct {
	Val string `xml:"val,attr"`
}

// Size represents font size
type Size struct {
	Val int `xml:"val,attr"`
}

// Font represents font information
type Font struct {
	ASCII string `xml:"ascii,attr"`
}

// UnderlineStyle represents underline formatting
type UnderlineStyle struct {
	Val string `xml:"val,attr"`
}

// Break represents a line break
type Break struct {
	Type string `xml:"type,attr,omitempty"`
}

// TableProperties represents table formatting properties
type TableProperties struct {
	Style *Style `xml:"tblStyle"`
}

// TableGrid represents table column definitions
type TableGrid struct {
	Columns []GridColumn `xml:"gridCol"`
}

// GridColumn represents a table column
type GridColumn struct {
	Width int `xml:"w,attr"`
}

// TableRowProperties represents row properties
type TableRowProperties struct {
	Height *Height `xml:"trHeight"`
}

// Height represents row height
type Height struct {
	Val int `xml:"val,attr"`
}

// TableCellProperties represents cell properties
type TableCellProperties struct {
	Width    *Width    `xml:"tcW"`
	GridSpan *GridSpan `xml:"gridSpan"`
}

// Width represents width settings
type Width struct {
	Type string `xml:"type,attr"`
	Val  int    `xml:"w,attr"`
}

// GridSpan represents cell column span
type GridSpan struct {
	Val int `xml:"val,attr"`
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &doc, nil
}

// GetText returns the text content of a run
func (r *Run) GetText() string {
	if r.Text == nil {
		return ""
	}
	return r.Text.Content
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var texts []string
	for _, run := range p.Runs {
		if text := run.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "")
}

// GetText returns the concatenated text of all paragraphs in a cell
func (c *TableCell) GetText() string {
	var texts []string
	for _, para := range c.Paragraphs {
		if text := para.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

// StyleVal returns the paragraph style id, or the empty string
func (p *Paragraph) StyleVal() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// SetText replaces the paragraph content with a single run carrying the given
// text. The properties of the first existing run are preserved so the
// template's font and emphasis survive population.
func (p *Paragraph) SetText(text string) {
	var props *RunProperties
	if len(p.Runs) > 0 {
		props = p.Runs[0].Properties
	}
	p.Runs = []Run{{
		Properties: props,
		Text:       &Text{Content: text, Space: "preserve"},
	}}
}

// SetText replaces the cell content with a single paragraph carrying the text
func (c *TableCell) SetText(text string) {
	var para Paragraph
	if len(c.Paragraphs) > 0 {
		para = c.Paragraphs[0]
	}
	para.SetText(text)
	c.Paragraphs = []Paragraph{para}
}

// ColumnCount returns the number of grid columns, falling back to the widest row
func (t *Table) ColumnCount() int {
	if t.Grid != nil && len(t.Grid.Columns) > 0 {
		return len(t.Grid.Columns)
	}
	max := 0
	for _, row := range t.Rows {
		if len(row.Cells) > max {
			max = len(row.Cells)
		}
	}
	return max
}

// Tables returns all tables in the document in body order
func (doc *Document) Tables() []*Table {
	if doc == nil || doc.Body == nil {
		return nil
	}
	var tables []*Table
	for _, elem := range doc.Body.Elements {
		if table, ok := elem.(*Table); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

// Paragraphs returns all top-level paragraphs in the document in body order
func (doc *Document) Paragraphs() []*Paragraph {
	if doc == nil || doc.Body == nil {
		return nil
	}
	var paras []*Paragraph
	for _, elem := range doc.Body.Elements {
		if para, ok := elem.(*Paragraph); ok {
			paras = append(paras, para)
		}
	}
	return paras
}
