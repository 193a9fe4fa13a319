// Package extracttest builds minimal DOCX packages for tests.
package extracttest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	relNS = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"

	ctMain   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctHeader = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
)

// Content lists the text placed in each part of a generated document.
// When Sections is empty, Paragraphs, Header and Footer form the only section.
type Content struct {
	Paragraphs []string
	Header     []string
	Footer     []string
	// Table rows of cell texts; nil means no table. A "\n" in a cell
	// starts a new cell paragraph.
	Table [][]string
	// Sections replaces Paragraphs, Header and Footer with several sections.
	Sections []Section
}

// Section is one body section. A nil Header or Footer leaves the section
// without a default reference of that kind.
type Section struct {
	Paragraphs  []string
	Header      []string
	Footer      []string
	FirstHeader []string
	EvenFooter  []string
}

type part struct {
	name        string
	relID       string
	relType     string
	contentType string
	body        string
}

type reference struct {
	element string
	kind    string
	relID   string
}

// DOCX renders content as a DOCX package.
func DOCX(content Content) []byte {
	sections := content.Sections
	if len(sections) == 0 {
		sections = []Section{{Paragraphs: content.Paragraphs, Header: content.Header, Footer: content.Footer}}
	}

	var (
		parts []part
		body  strings.Builder
	)

	addPart := func(root string, paragraphs []string) string {
		n := len(parts) + 1
		p := part{
			relID: "rIdPart" + strconv.Itoa(n),
			body:  partXML(root, paragraphs),
		}

		if root == "hdr" {
			p.name, p.relType, p.contentType = "header"+strconv.Itoa(n)+".xml", relHeader, ctHeader
		} else {
			p.name, p.relType, p.contentType = "footer"+strconv.Itoa(n)+".xml", relFooter, ctFooter
		}

		parts = append(parts, p)

		return p.relID
	}

	for i, sec := range sections {
		var refs []reference

		if sec.Header != nil {
			refs = append(refs, reference{"headerReference", "default", addPart("hdr", sec.Header)})
		}

		if sec.FirstHeader != nil {
			refs = append(refs, reference{"headerReference", "first", addPart("hdr", sec.FirstHeader)})
		}

		if sec.Footer != nil {
			refs = append(refs, reference{"footerReference", "default", addPart("ftr", sec.Footer)})
		}

		if sec.EvenFooter != nil {
			refs = append(refs, reference{"footerReference", "even", addPart("ftr", sec.EvenFooter)})
		}

		props := sectPr(refs)

		if i == len(sections)-1 {
			for _, p := range sec.Paragraphs {
				body.WriteString(paragraph(p, ""))
			}

			body.WriteString(tableXML(content.Table))
			body.WriteString(props)

			continue
		}

		paras := sec.Paragraphs
		if len(paras) == 0 {
			paras = []string{""}
		}

		for j, p := range paras {
			if j == len(paras)-1 {
				body.WriteString(paragraph(p, props))
			} else {
				body.WriteString(paragraph(p, ""))
			}
		}
	}

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	write := func(name, data string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}

		_, err = w.Write([]byte(data))
		if err != nil {
			panic(err)
		}
	}

	write("[Content_Types].xml", contentTypes(parts))
	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<Relationships xmlns="`+relNS+`">`+
		`<Relationship Id="rId1" Type="`+relOfficeDocument+`" Target="word/document.xml"/>`+
		`</Relationships>`)
	write("word/_rels/document.xml.rels", documentRels(parts))
	write("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="`+nsW+`" xmlns:r="`+nsR+`"><w:body>`+body.String()+`</w:body></w:document>`)

	for _, p := range parts {
		write("word/"+p.name, p.body)
	}

	err := zw.Close()
	if err != nil {
		panic(err)
	}

	return buf.Bytes()
}

func contentTypes(parts []part) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="` + ctMain + `"/>`)

	for _, p := range parts {
		sb.WriteString(`<Override PartName="/word/` + p.name + `" ContentType="` + p.contentType + `"/>`)
	}

	sb.WriteString(`</Types>`)

	return sb.String()
}

func documentRels(parts []part) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Relationships xmlns="` + relNS + `">`)

	for _, p := range parts {
		sb.WriteString(`<Relationship Id="` + p.relID + `" Type="` + p.relType + `" Target="` + p.name + `"/>`)
	}

	sb.WriteString(`</Relationships>`)

	return sb.String()
}

func sectPr(refs []reference) string {
	var sb strings.Builder

	sb.WriteString(`<w:sectPr>`)

	for _, ref := range refs {
		sb.WriteString(`<w:` + ref.element + ` w:type="` + ref.kind + `" r:id="` + ref.relID + `"/>`)
	}

	sb.WriteString(`<w:pgSz w:w="12240" w:h="15840"/></w:sectPr>`)

	return sb.String()
}

func tableXML(rows [][]string) string {
	if rows == nil {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)

	for _, row := range rows {
		sb.WriteString(`<w:tr>`)

		for _, cell := range row {
			sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr>`)

			for _, line := range strings.Split(cell, "\n") {
				sb.WriteString(paragraph(line, ""))
			}

			sb.WriteString(`</w:tc>`)
		}

		sb.WriteString(`</w:tr>`)
	}

	sb.WriteString(`</w:tbl>`)

	return sb.String()
}

func partXML(root string, paragraphs []string) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:` + root + ` xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">`)

	for _, p := range paragraphs {
		sb.WriteString(paragraph(p, ""))
	}

	sb.WriteString(`</w:` + root + `>`)

	return sb.String()
}

func paragraph(text, props string) string {
	var sb strings.Builder

	sb.WriteString(`<w:p>`)

	if props != "" {
		sb.WriteString(`<w:pPr>` + props + `</w:pPr>`)
	}

	if text != "" {
		sb.WriteString(`<w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`)
	}

	sb.WriteString(`</w:p>`)

	return sb.String()
}

func escape(text string) string {
	var sb strings.Builder

	err := xml.EscapeText(&sb, []byte(text))
	if err != nil {
		panic(err)
	}

	return sb.String()
}
