package domain

import (
	"strconv"
	"strings"
)

// Well-known field and subfield names carrying record identity.
const (
	FieldID        = "001"
	FieldStatus    = "004"
	FieldParent    = "014"
	FieldOwnership = "996"

	SubfieldRecordID = "a"
	SubfieldAgencyID = "b"
	SubfieldStatus   = "r"
	SubfieldParentID = "a"

	// StatusDeleted is the 004r value marking a record as deleted.
	StatusDeleted = "d"
)

// Subfield is a single (code, value) pair within a field.
type Subfield struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field is a tagged, repeatable field with an ordered list of subfields.
type Field struct {
	Name      string     `json:"name"`
	Indicator string     `json:"indicator"`
	Subfields []Subfield `json:"subfields"`
}

// MarcRecord is a logical bibliographic record: an ordered sequence of fields.
// Field and subfield lookups are by string tag; tags are repeatable.
type MarcRecord struct {
	Fields []Field `json:"fields"`
}

// NewField creates a field with the given name and indicator.
func NewField(name, indicator string, subfields ...Subfield) Field {
	return Field{Name: name, Indicator: indicator, Subfields: subfields}
}

// Value returns the value of the first subfield with the given name.
func (f Field) Value(subfield string) string {
	for _, sf := range f.Subfields {
		if sf.Name == subfield {
			return sf.Value
		}
	}
	return ""
}

// HasSubfield reports whether the field has a subfield with the given name.
func (f Field) HasSubfield(subfield string) bool {
	for _, sf := range f.Subfields {
		if sf.Name == subfield {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	c := Field{Name: f.Name, Indicator: f.Indicator}
	if f.Subfields != nil {
		c.Subfields = make([]Subfield, len(f.Subfields))
		copy(c.Subfields, f.Subfields)
	}
	return c
}

// String renders the field in line format, e.g. "001 00 *a 123 *b 191919".
func (f Field) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(" ")
	b.WriteString(f.Indicator)
	for _, sf := range f.Subfields {
		b.WriteString(" *")
		b.WriteString(sf.Name)
		b.WriteString(" ")
		b.WriteString(sf.Value)
	}
	return b.String()
}

// IsEmpty reports whether the record has no fields.
func (r *MarcRecord) IsEmpty() bool {
	return r == nil || len(r.Fields) == 0
}

// Value returns the value of the first matching field/subfield pair.
func (r *MarcRecord) Value(field, subfield string) string {
	if r == nil {
		return ""
	}
	for _, f := range r.Fields {
		if f.Name != field {
			continue
		}
		for _, sf := range f.Subfields {
			if sf.Name == subfield {
				return sf.Value
			}
		}
	}
	return ""
}

// HasField reports whether the record contains at least one field with the name.
func (r *MarcRecord) HasField(name string) bool {
	if r == nil {
		return false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldsNamed returns all fields with the given name, in record order.
func (r *MarcRecord) FieldsNamed(name string) []Field {
	if r == nil {
		return nil
	}
	var result []Field
	for _, f := range r.Fields {
		if f.Name == name {
			result = append(result, f)
		}
	}
	return result
}

// Append adds fields at the end of the record.
func (r *MarcRecord) Append(fields ...Field) {
	r.Fields = append(r.Fields, fields...)
}

// RemoveFields removes every field with the given name.
func (r *MarcRecord) RemoveFields(name string) {
	kept := r.Fields[:0]
	for _, f := range r.Fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	r.Fields = kept
}

// AddOrReplaceSubfield sets field/subfield to value. The first matching
// subfield is replaced; if the field exists without the subfield the subfield
// is appended to it; if the field is missing it is appended to the record.
func (r *MarcRecord) AddOrReplaceSubfield(field, subfield, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name != field {
			continue
		}
		for j := range r.Fields[i].Subfields {
			if r.Fields[i].Subfields[j].Name == subfield {
				r.Fields[i].Subfields[j].Value = value
				return
			}
		}
		r.Fields[i].Subfields = append(r.Fields[i].Subfields, Subfield{Name: subfield, Value: value})
		return
	}
	r.Fields = append(r.Fields, NewField(field, "00", Subfield{Name: subfield, Value: value}))
}

// Clone returns a deep copy of the record.
func (r *MarcRecord) Clone() *MarcRecord {
	if r == nil {
		return nil
	}
	c := &MarcRecord{Fields: make([]Field, len(r.Fields))}
	for i, f := range r.Fields {
		c.Fields[i] = f.Clone()
	}
	return c
}

// RecordID returns 001a.
func (r *MarcRecord) RecordID() string {
	return r.Value(FieldID, SubfieldRecordID)
}

// AgencyID returns 001b as an integer.
// A missing or non-numeric value yields an ErrInvalidAgency error.
func (r *MarcRecord) AgencyID() (int, error) {
	raw := r.Value(FieldID, SubfieldAgencyID)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewUpdateError(ErrInvalidAgency, KeyInvalidAgency, err, raw)
	}
	return id, nil
}

// ParentID returns 014a, the id of the parent record in a volume hierarchy.
func (r *MarcRecord) ParentID() string {
	return r.Value(FieldParent, SubfieldParentID)
}

// IsDeleted reports whether the record carries the deletion mark (004r = "d").
func (r *MarcRecord) IsDeleted() bool {
	return r.Value(FieldStatus, SubfieldStatus) == StatusDeleted
}

// String renders the record one field per line.
func (r *MarcRecord) String() string {
	if r == nil {
		return ""
	}
	lines := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
