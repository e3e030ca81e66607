package docfill

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// namespaceURIToPrefix converts a full namespace URI to its prefix
func namespaceURIToPrefix(uri string) string {
	prefixMap := map[string]string{
		"http://schemas.openxmlformats.org/wordprocessingml/2006/main":           "w",
		"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
		"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
		"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
		"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
		"http://schemas.microsoft.com/office/drawing/2010/main":                  "a14",
		"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
		"http://www.w3.org/XML/1998/namespace":                                   "xml",
		"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
		"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
		"http://schemas.microsoft.com/office/word/2012/wordml":                   "w15",
		"http://schemas.microsoft.com/office/word/2018/wordml":                   "w16",
		"http://schemas.microsoft.com/office/word/2015/wordml/symex":             "w16se",
		"urn:schemas-microsoft-com:vml":                                          "v",
		"urn:schemas-microsoft-com:office:office":                                "o",
		"urn:schemas-microsoft-com:office:word":                                  "w10",
		"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	}

	if prefix, ok := prefixMap[uri]; ok {
		return prefix
	}
	// Return the URI as-is if no mapping found (shouldn't happen but safe fallback)
	return uri
}

// wordprocessingmlReplacements maps the plain element/attribute names our
// model marshals to their w: prefixed forms. Order matters for the attribute
// entries, which match on the leading space.
var wordprocessingmlReplacements = [][2]string{
	{"<body>", "<w:body>"},
	{"</body>", "</w:body>"},
	{"<p>", "<w:p>"},
	{"</p>", "</w:p>"},
	{"<r>", "<w:r>"},
	{"</r>", "</w:r>"},
	{"<t ", "<w:t "},
	{"<t>", "<w:t>"},
	{"</t>", "</w:t>"},
	{"<br>", "<w:br/>"},
	{"</br>", ""},
	{"<br/>", "<w:br/>"},
	{"<br ", "<w:br "},
	{"<tbl>", "<w:tbl>"},
	{"</tbl>", "</w:tbl>"},
	{"<tr>", "<w:tr>"},
	{"</tr>", "</w:tr>"},
	{"<tc>", "<w:tc>"},
	{"</tc>", "</w:tc>"},
	{"<tblPr>", "<w:tblPr>"},
	{"</tblPr>", "</w:tblPr>"},
	{"<tblGrid>", "<w:tblGrid>"},
	{"</tblGrid>", "</w:tblGrid>"},
	{"<gridCol ", "<w:gridCol "},
	{"<gridCol/>", "<w:gridCol/>"},
	{"</gridCol>", "</w:gridCol>"},
	{"<tcPr>", "<w:tcPr>"},
	{"</tcPr>", "</w:tcPr>"},
	{"<trPr>", "<w:trPr>"},
	{"</trPr>", "</w:trPr>"},
	{"<trHeight ", "<w:trHeight "},
	{"</trHeight>", "</w:trHeight>"},
	{"<gridSpan ", "<w:gridSpan "},
	{"</gridSpan>", "</w:gridSpan>"},
	{"<pPr>", "<w:pPr>"},
	{"</pPr>", "</w:pPr>"},
	{"<rPr>", "<w:rPr>"},
	{"</rPr>", "</w:rPr>"},
	{"<b></b>", "<w:b/>"},
	{"<b/>", "<w:b/>"},
	{"<i></i>", "<w:i/>"},
	{"<i/>", "<w:i/>"},
	{"<u ", "<w:u "},
	{"</u>", "</w:u>"},
	{"<color ", "<w:color "},
	{"</color>", "</w:color>"},
	{"<sz ", "<w:sz "},
	{"</sz>", "</w:sz>"},
	{"<jc ", "<w:jc "},
	{"</jc>", "</w:jc>"},
	{"<pStyle ", "<w:pStyle "},
	{"</pStyle>", "</w:pStyle>"},
	{"<rFonts ", "<w:rFonts "},
	{"</rFonts>", "</w:rFonts>"},
	{"<tblStyle ", "<w:tblStyle "},
	{"</tblStyle>", "</w:tblStyle>"},
	{"<tcW ", "<w:tcW "},
	{"</tcW>", "</w:tcW>"},
	// Attributes
	{` val="`, ` w:val="`},
	{` type="`, ` w:type="`},
	{` w="`, ` w:w="`},
	{` ascii="`, ` w:ascii="`},
	{` space="preserve"`, ` xml:space="preserve"`},
	{` space=""`, ``},
	// Empty property containers upset Word
	{`<w:pPr></w:pPr>`, ``},
	{`<w:rPr></w:rPr>`, ``},
	{`<w:pStyle w:val=""></w:pStyle>`, ``},
}

// marshalDocument marshals a document back into word/document.xml bytes with
// proper w: namespacing and the preserved root attributes.
func marshalDocument(doc *Document) ([]byte, error) {
	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}

	xmlStr := string(data)
	for _, repl := range wordprocessingmlReplacements {
		xmlStr = strings.ReplaceAll(xmlStr, repl[0], repl[1])
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	buf.WriteString("\n")

	// Build root element with preserved namespace attributes
	buf.WriteString("<w:document")
	if len(doc.Attrs) > 0 {
		for _, attr := range doc.Attrs {
			// Skip the default xmlns declaration since we're using w:document
			if attr.Name.Local == "xmlns" && attr.Name.Space == "" {
				continue
			}
			buf.WriteString(" ")
			if attr.Name.Space != "" {
				prefix := namespaceURIToPrefix(attr.Name.Space)
				buf.WriteString(prefix)
				buf.WriteString(":")
			}
			buf.WriteString(attr.Name.Local)
			buf.WriteString(`="`)
			buf.WriteString(attr.Value)
			buf.WriteString(`"`)
		}
	} else {
		buf.WriteString(` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`)
		buf.WriteString(` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`)
	}
	buf.WriteString(">")

	// Extract the body content (remove the outer document tags we marshaled)
	start := strings.Index(xmlStr, "<document>")
	end := strings.LastIndex(xmlStr, "</document>")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid marshaled document structure")
	}
	bodyContent := strings.TrimSpace(xmlStr[start+len("<document>") : end])

	// Insert section properties before </w:body> if present
	if doc.Body != nil && doc.Body.SectionProperties != nil {
		bodyEndTag := "</w:body>"
		bodyEndIdx := strings.LastIndex(bodyContent, bodyEndTag)
		if bodyEndIdx >= 0 {
			bodyContent = bodyContent[:bodyEndIdx] + sectionPropertiesXML(doc.Body.SectionProperties) + bodyContent[bodyEndIdx:]
		}
	}

	buf.WriteString(bodyContent)
	buf.WriteString(`</w:document>`)

	return buf.Bytes(), nil
}

// sectionPropertiesXML rebuilds the captured sectPr element with namespace
// URIs converted back to prefixes.
func sectionPropertiesXML(sect *RawXMLElement) string {
	var buf bytes.Buffer
	buf.WriteString("<w:sectPr")
	for _, attr := range sect.Attrs {
		buf.WriteString(" w:")
		buf.WriteString(attr.Name.Local)
		buf.WriteString(`="`)
		buf.WriteString(attr.Value)
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
	buf.WriteString(prefixNamespaceURIs(string(sect.Content)))
	buf.WriteString("</w:sectPr>")
	return buf.String()
}

// prefixNamespaceURIs converts full namespace URIs embedded by the decoder
// into their conventional prefixes, for both elements and attributes.
func prefixNamespaceURIs(s string) string {
	uris := []struct {
		uri    string
		prefix string
	}{
		{"http://schemas.openxmlformats.org/wordprocessingml/2006/main", "w"},
		{"http://schemas.openxmlformats.org/officeDocument/2006/relationships", "r"},
		{"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing", "wp"},
		{"http://schemas.openxmlformats.org/drawingml/2006/main", "a"},
		{"http://www.w3.org/XML/1998/namespace", "xml"},
	}
	for _, u := range uris {
		s = strings.ReplaceAll(s, u.uri+":", u.prefix+":")
		s = strings.ReplaceAll(s, " "+u.uri+":", " "+u.prefix+":")
	}
	return s
}
