// Package marcxchange encodes records as MarcXchange XML.
//
// Record content in the repository is stored in this format. Fields are
// written as datafields with the first indicator character in ind1 and the
// rest in ind2. A field holding a single unnamed subfield and no indicator
// round-trips as a controlfield.
package marcxchange

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// Namespace is the MarcXchange XML namespace.
const Namespace = "info:lc/xmlns/marcxchange-v1"

const (
	defaultLeader = "00000n    2200000   4500"
	defaultFormat = "danMARC2"
	defaultType   = "Bibliographic"
)

var errNoRecord = errors.New("marcxchange: no record element")

// Ensure Codec implements the interface.
var _ driven.RecordCodec = (*Codec)(nil)

type xmlRecord struct {
	XMLName xml.Name `xml:"record"`
	Xmlns   string   `xml:"xmlns,attr"`
	Format  string   `xml:"format,attr,omitempty"`
	Type    string   `xml:"type,attr,omitempty"`
	Leader  string   `xml:"leader,omitempty"`
	Fields  []xmlField
}

// xmlField is a controlfield or a datafield, named by XMLName.
type xmlField struct {
	XMLName   xml.Name
	Tag       string        `xml:"tag,attr"`
	Ind1      string        `xml:"ind1,attr,omitempty"`
	Ind2      string        `xml:"ind2,attr,omitempty"`
	Value     string        `xml:",chardata"`
	Subfields []xmlSubfield `xml:"subfield"`
}

type xmlSubfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// Codec converts records to and from MarcXchange content.
type Codec struct{}

// NewCodec creates a MarcXchange codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode serialises the record. An empty record encodes to nil.
func (c *Codec) Encode(rec *domain.MarcRecord) ([]byte, error) {
	if rec.IsEmpty() {
		return nil, nil
	}
	out, err := xml.Marshal(toXML(rec))
	if err != nil {
		return nil, fmt.Errorf("marshalling marcxchange: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Decode parses the first record of content, which may be a bare record
// or a collection.
func (c *Codec) Decode(content []byte) (*domain.MarcRecord, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return &domain.MarcRecord{}, nil
	}
	rec, err := NewReader(bytes.NewReader(content)).Read()
	if errors.Is(err, io.EOF) {
		return nil, errNoRecord
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func toXML(rec *domain.MarcRecord) *xmlRecord {
	x := &xmlRecord{
		Xmlns:  Namespace,
		Format: defaultFormat,
		Type:   defaultType,
		Leader: defaultLeader,
	}
	for _, f := range rec.Fields {
		if isControlField(f) {
			x.Fields = append(x.Fields, xmlField{
				XMLName: xml.Name{Local: "controlfield"},
				Tag:     f.Name,
				Value:   f.Subfields[0].Value,
			})
			continue
		}
		df := xmlField{XMLName: xml.Name{Local: "datafield"}, Tag: f.Name}
		if f.Indicator != "" {
			df.Ind1, df.Ind2 = f.Indicator[:1], f.Indicator[1:]
		}
		for _, sf := range f.Subfields {
			df.Subfields = append(df.Subfields, xmlSubfield{Code: sf.Name, Value: sf.Value})
		}
		x.Fields = append(x.Fields, df)
	}
	return x
}

// decodeRecord reads the fields of the record element opened by start,
// in document order. Elements other than fields are skipped.
func decodeRecord(d *xml.Decoder, start xml.StartElement) (*domain.MarcRecord, error) {
	rec := &domain.MarcRecord{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var f xmlField
			switch t.Name.Local {
			case "controlfield":
				if err := d.DecodeElement(&f, &t); err != nil {
					return nil, err
				}
				rec.Append(domain.NewField(f.Tag, "", domain.Subfield{Value: f.Value}))
			case "datafield":
				if err := d.DecodeElement(&f, &t); err != nil {
					return nil, err
				}
				field := domain.NewField(f.Tag, f.Ind1+f.Ind2)
				for _, sf := range f.Subfields {
					field.Subfields = append(field.Subfields, domain.Subfield{Name: sf.Code, Value: sf.Value})
				}
				rec.Append(field)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return rec, nil
			}
		}
	}
}

func isControlField(f domain.Field) bool {
	return f.Indicator == "" && len(f.Subfields) == 1 && f.Subfields[0].Name == ""
}
