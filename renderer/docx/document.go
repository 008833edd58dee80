package docxrenderer

import "encoding/xml"

// XML namespaces used in DOCX files
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

// documentXML represents word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	Body    bodyXML  `xml:"w:body"`
}

// bodyXML holds the paragraphs followed by the section properties.
type bodyXML struct {
	Paragraphs []paragraphXML `xml:"w:p"`
	Section    sectionXML     `xml:"w:sectPr"`
}

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	Properties paragraphPropsXML `xml:"w:pPr"`
	Runs       []runXML          `xml:"w:r"`
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Spacing       spacingXML `xml:"w:spacing"`
	Justification valXML     `xml:"w:jc"` // left, both
}

type spacingXML struct {
	After    int    `xml:"w:after,attr"`
	Line     int    `xml:"w:line,attr"`
	LineRule string `xml:"w:lineRule,attr"`
}

// runXML is one hard-break segment; every run after the first starts with <w:br/>.
type runXML struct {
	Properties runPropsXML `xml:"w:rPr"`
	Break      *breakXML   `xml:"w:br,omitempty"`
	Text       textXML     `xml:"w:t"`
}

type breakXML struct{}

type runPropsXML struct {
	Fonts  fontsXML `xml:"w:rFonts"`
	Size   valXML   `xml:"w:sz"`
	SizeCS valXML   `xml:"w:szCs"`
}

type fontsXML struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	CS    string `xml:"w:cs,attr"`
}

type textXML struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type valXML struct {
	Val string `xml:"w:val,attr"`
}

// sectionXML carries page size and margins in twips (1pt = 20 twips).
type sectionXML struct {
	PageSize   pageSizeXML   `xml:"w:pgSz"`
	PageMargin pageMarginXML `xml:"w:pgMar"`
}

type pageSizeXML struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type pageMarginXML struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

// corePropsXML represents docProps/core.xml
type corePropsXML struct {
	XMLName      xml.Name `xml:"cp:coreProperties"`
	XmlnsCP      string   `xml:"xmlns:cp,attr"`
	XmlnsDC      string   `xml:"xmlns:dc,attr"`
	XmlnsDCTerms string   `xml:"xmlns:dcterms,attr"`
	XmlnsXSI     string   `xml:"xmlns:xsi,attr"`
	Title        string   `xml:"dc:title,omitempty"`
	Subject      string   `xml:"dc:subject,omitempty"`
	Creator      string   `xml:"dc:creator,omitempty"`
	Keywords     string   `xml:"cp:keywords,omitempty"`
}
