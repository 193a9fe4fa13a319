package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrMalformedDocument is returned when bytes cannot be parsed into a document.
var ErrMalformedDocument = errors.New("malformed document")

// Parser turns raw document bytes into a Document.
type Parser interface {
	Parse(data []byte) (*Document, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(data []byte) (*Document, error)

// Parse calls f(data).
func (f ParserFunc) Parse(data []byte) (*Document, error) {
	return f(data)
}

const (
	nsWordML        = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeOfficeDocument = nsRelationships + "/officeDocument"

	defaultMainPart = "word/document.xml"
	rootRelsPart    = "_rels/.rels"

	refDefault = "default"

	// maxPartSize caps the decompressed size of a single package part.
	maxPartSize = 256 << 20
)

var (
	errMissingPart = errors.New("missing package part")
	errMissingBody = errors.New("missing document body")
	errPartTooBig  = errors.New("package part too large")
)

// DOCXParser reads Office Open XML word-processing documents straight from
// the zip package.
type DOCXParser struct{}

// NewDOCXParser creates a DOCX parser.
func NewDOCXParser() *DOCXParser {
	return &DOCXParser{}
}

// Parse reads body paragraphs, the default header and footer of every
// section, and body tables.
func (p *DOCXParser) Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}

	doc, err := parseDOCX(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	return doc, nil
}

func parseDOCX(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	pkg := newOPCPackage(zr)

	mainPart, err := pkg.mainPart()
	if err != nil {
		return nil, err
	}

	rels, err := pkg.relationships(mainPart)
	if err != nil {
		return nil, err
	}

	rc, err := pkg.open(mainPart)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, refs, err := readBody(xml.NewDecoder(rc))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", mainPart, err)
	}

	// A section without its own default header or footer continues the
	// previous section's.
	var prev Section

	for _, ref := range refs {
		sec := prev

		if ref.header != "" {
			sec.Header, err = pkg.region(rels, ref.header)
			if err != nil {
				return nil, err
			}
		}

		if ref.footer != "" {
			sec.Footer, err = pkg.region(rels, ref.footer)
			if err != nil {
				return nil, err
			}
		}

		doc.Sections = append(doc.Sections, sec)
		prev = sec
	}

	return doc, nil
}

// opcPackage indexes zip entries by their case-folded part name.
type opcPackage struct {
	files map[string]*zip.File
}

func newOPCPackage(zr *zip.Reader) *opcPackage {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[partKey(f.Name)] = f
	}

	return &opcPackage{files: files}
}

func partKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Clean("/"+name), "/"))
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}

func (pkg *opcPackage) open(name string) (io.ReadCloser, error) {
	f, ok := pkg.files[partKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMissingPart, name)
	}

	if f.UncompressedSize64 > maxPartSize {
		return nil, fmt.Errorf("%w: %s", errPartTooBig, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	return limitedReadCloser{Reader: io.LimitReader(rc, maxPartSize), Closer: rc}, nil
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationshipList struct {
	Items []relationship `xml:"Relationship"`
}

// relsFor returns the relationships part name for source.
func relsFor(source string) string {
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// readRelationships decodes a relationships part. A missing part means the
// source has no relationships.
func (pkg *opcPackage) readRelationships(relsPart string) ([]relationship, error) {
	if _, ok := pkg.files[partKey(relsPart)]; !ok {
		return nil, nil
	}

	rc, err := pkg.open(relsPart)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var list relationshipList

	err = xml.NewDecoder(rc).Decode(&list)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relsPart, err)
	}

	return list.Items, nil
}

// mainPart follows the package officeDocument relationship, falling back to
// the conventional location.
func (pkg *opcPackage) mainPart() (string, error) {
	rels, err := pkg.readRelationships(rootRelsPart)
	if err != nil {
		return "", err
	}

	for _, rel := range rels {
		if rel.Type == relTypeOfficeDocument && rel.TargetMode != "External" {
			return resolveTarget("", rel.Target), nil
		}
	}

	return defaultMainPart, nil
}

// relationships maps internal relationship IDs of source to part names.
func (pkg *opcPackage) relationships(source string) (map[string]string, error) {
	rels, err := pkg.readRelationships(relsFor(source))
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rels))

	for _, rel := range rels {
		if rel.TargetMode == "External" {
			continue
		}

		out[rel.ID] = resolveTarget(path.Dir(source), rel.Target)
	}

	return out, nil
}

func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}

	return strings.TrimPrefix(path.Join("/", baseDir, target), "/")
}

// region reads the paragraphs of the header or footer part behind relID.
func (pkg *opcPackage) region(rels map[string]string, relID string) (Region, error) {
	name, ok := rels[relID]
	if !ok {
		return Region{}, fmt.Errorf("%w: relationship %s", errMissingPart, relID)
	}

	rc, err := pkg.open(name)
	if err != nil {
		return Region{}, err
	}
	defer rc.Close()

	paras, err := readPart(xml.NewDecoder(rc))
	if err != nil {
		return Region{}, fmt.Errorf("read %s: %w", name, err)
	}

	return Region{Paragraphs: paras}, nil
}

// sectionRefs holds the relationship IDs of one section's default header
// and footer. Empty means the section has none of its own.
type sectionRefs struct {
	header string
	footer string
}

func isWordML(name xml.Name, local string) bool {
	return name.Space == nsWordML && name.Local == local
}

func attr(start xml.StartElement, space, local string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}

	return "", false
}

// readBody walks word/document.xml. Body paragraphs and tables are kept in
// order. Section properties are collected from paragraph properties and
// from the end of the body.
func readBody(dec *xml.Decoder) (*Document, []sectionRefs, error) {
	err := seek(dec, "body")
	if err != nil {
		return nil, nil, err
	}

	doc := &Document{}

	var refs []sectionRefs

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "p"):
				text, sec, err := readParagraph(dec)
				if err != nil {
					return nil, nil, err
				}

				doc.Paragraphs = append(doc.Paragraphs, text)

				if sec != nil {
					refs = append(refs, *sec)
				}
			case isWordML(t.Name, "tbl"):
				table, err := readTable(dec)
				if err != nil {
					return nil, nil, err
				}

				doc.Tables = append(doc.Tables, table)
			case isWordML(t.Name, "sectPr"):
				sec, err := readSectPr(dec)
				if err != nil {
					return nil, nil, err
				}

				refs = append(refs, sec)
			default:
				err = dec.Skip()
				if err != nil {
					return nil, nil, err
				}
			}
		case xml.EndElement:
			return doc, refs, nil
		}
	}
}

// readPart returns the top-level paragraphs of a header or footer part.
func readPart(dec *xml.Decoder) ([]string, error) {
	var paras []string

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paras, nil
		}

		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !isWordML(start.Name, "hdr") && !isWordML(start.Name, "ftr") {
			err = dec.Skip()
			if err != nil {
				return nil, err
			}

			continue
		}

		return readParagraphs(dec)
	}
}

// seek advances dec past the start of the first WordprocessingML element
// named local.
func seek(dec *xml.Decoder, local string) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return errMissingBody
		}

		if err != nil {
			return err
		}

		if start, ok := tok.(xml.StartElement); ok && isWordML(start.Name, local) {
			return nil
		}
	}
}

// readParagraphs collects the direct child paragraphs of the current
// element, skipping anything else.
func readParagraphs(dec *xml.Decoder) ([]string, error) {
	var paras []string

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordML(t.Name, "p") {
				err = dec.Skip()
				if err != nil {
					return nil, err
				}

				continue
			}

			text, _, err := readParagraph(dec)
			if err != nil {
				return nil, err
			}

			paras = append(paras, text)
		case xml.EndElement:
			return paras, nil
		}
	}
}

// readParagraph returns the run text of a w:p and any section properties it
// closes.
func readParagraph(dec *xml.Decoder) (string, *sectionRefs, error) {
	var (
		sb  strings.Builder
		sec *sectionRefs
	)

	err := readParagraphContent(dec, &sb, &sec)
	if err != nil {
		return "", nil, err
	}

	return sb.String(), sec, nil
}

func readParagraphContent(dec *xml.Decoder, sb *strings.Builder, sec **sectionRefs) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "r"):
				err = readRun(dec, sb)
			case isWordML(t.Name, "hyperlink"):
				err = readParagraphContent(dec, sb, sec)
			case isWordML(t.Name, "pPr"):
				err = readParagraphProps(dec, sec)
			default:
				err = dec.Skip()
			}

			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func readParagraphProps(dec *xml.Decoder, sec **sectionRefs) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordML(t.Name, "sectPr") {
				err = dec.Skip()
				if err != nil {
					return err
				}

				continue
			}

			refs, err := readSectPr(dec)
			if err != nil {
				return err
			}

			*sec = &refs
		case xml.EndElement:
			return nil
		}
	}
}

// readRun appends the visible text of a w:r. Tabs and line breaks become
// "\t" and "\n"; deleted text and field codes are dropped.
func readRun(dec *xml.Decoder, sb *strings.Builder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "t"):
				var text string

				err = dec.DecodeElement(&text, &t)
				if err != nil {
					return err
				}

				sb.WriteString(text)

				continue
			case isWordML(t.Name, "tab"):
				sb.WriteByte('\t')
			case isWordML(t.Name, "br"):
				kind, _ := attr(t, nsWordML, "type")
				if kind == "" || kind == "textWrapping" {
					sb.WriteByte('\n')
				}
			case isWordML(t.Name, "cr"):
				sb.WriteByte('\n')
			case isWordML(t.Name, "noBreakHyphen"):
				sb.WriteByte('-')
			}

			err = dec.Skip()
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// readSectPr extracts the default header and footer references.
func readSectPr(dec *xml.Decoder) (sectionRefs, error) {
	var refs sectionRefs

	for {
		tok, err := dec.Token()
		if err != nil {
			return refs, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			kind, ok := attr(t, nsWordML, "type")
			if !ok {
				kind = refDefault
			}

			id, _ := attr(t, nsRelationships, "id")

			switch {
			case kind != refDefault:
			case isWordML(t.Name, "headerReference"):
				refs.header = id
			case isWordML(t.Name, "footerReference"):
				refs.footer = id
			}

			err = dec.Skip()
			if err != nil {
				return refs, err
			}
		case xml.EndElement:
			return refs, nil
		}
	}
}

// readTable reads the rows of a w:tbl. Each cell holds its direct
// paragraphs joined by "\n"; nested tables are skipped.
func readTable(dec *xml.Decoder) (Table, error) {
	var table Table

	for {
		tok, err := dec.Token()
		if err != nil {
			return table, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordML(t.Name, "tr") {
				err = dec.Skip()
				if err != nil {
					return table, err
				}

				continue
			}

			row, err := readRow(dec)
			if err != nil {
				return table, err
			}

			table.Rows = append(table.Rows, row)
		case xml.EndElement:
			return table, nil
		}
	}
}

func readRow(dec *xml.Decoder) ([]string, error) {
	var row []string

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordML(t.Name, "tc") {
				err = dec.Skip()
				if err != nil {
					return nil, err
				}

				continue
			}

			paras, err := readParagraphs(dec)
			if err != nil {
				return nil, err
			}

			row = append(row, strings.Join(paras, "\n"))
		case xml.EndElement:
			return row, nil
		}
	}
}
