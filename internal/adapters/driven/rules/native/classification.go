package native

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

type valueFunc func(string) string

// changeCheck detects a classification change between two records. It runs
// when any of its fields is configured as classification data.
type changeCheck struct {
	fields  []string
	changed func(oldRec, newRec *domain.MarcRecord) bool
}

var (
	reE    = regexp.MustCompile(`e`)
	reB    = regexp.MustCompile(`b`)
	reMorS = regexp.MustCompile(`m|s`)
	reP    = regexp.MustCompile(`p`)
)

var changeChecks = []changeCheck{
	{fields: []string{"004"}, changed: func(o, n *domain.MarcRecord) bool {
		return matchValue(o, "004", "a", reE) && matchValue(n, "004", "a", reB)
	}},
	{fields: []string{"008"}, changed: func(o, n *domain.MarcRecord) bool {
		return matchValue(o, "008", "t", reMorS) && matchValue(n, "008", "t", reP)
	}},
	{fields: []string{"009"}, changed: func(o, n *domain.MarcRecord) bool {
		return subfieldChanged(o, n, identity, "009", "a", nil) ||
			subfieldChanged(o, n, identity, "009", "g", nil)
	}},
	{fields: []string{"038", "039"}, changed: func(o, n *domain.MarcRecord) bool {
		return fieldSetChanged(fieldsNamed(o, "038", "039"), fieldsNamed(n, "038", "039"), identity)
	}},
	{fields: []string{"100"}, changed: func(o, n *domain.MarcRecord) bool {
		return fieldByNameChanged(o, n, "100", strip, "0", "4", "c")
	}},
	{fields: []string{"110"}, changed: func(o, n *domain.MarcRecord) bool {
		return fieldByNameChanged(o, n, "110", strip)
	}},
	{fields: []string{"239"}, changed: func(o, n *domain.MarcRecord) bool {
		return fieldByNameChanged(o, n, "239", strip10, "c")
	}},
	{fields: []string{"245"}, changed: func(o, n *domain.MarcRecord) bool {
		checks := []struct {
			subfield string
			value    valueFunc
		}{
			{"a", strip10}, {"g", strip10}, {"m", identity}, {"n", strip},
			{"o", strip10}, {"y", strip10}, {"æ", strip10}, {"ø", strip10},
		}
		for _, c := range checks {
			if subfieldChanged(o, n, c.value, "245", c.subfield, nil) {
				return true
			}
		}
		return false
	}},
	{fields: []string{"652"}, changed: func(o, n *domain.MarcRecord) bool {
		checks := []struct {
			subfield string
			value    valueFunc
		}{
			{"a", strip10}, {"b", strip10}, {"e", strip}, {"f", strip}, {"h", strip},
		}
		for _, c := range checks {
			if subfieldChanged(o, n, c.value, "652", c.subfield, withMorO) {
				return true
			}
		}
		return subfieldChanged(o, n, strip, "652", "m", nil) ||
			subfieldChanged(o, n, strip, "652", "o", nil)
	}},
}

// HasClassificationsChanged reports whether the classification data of
// newRec differs from oldRec.
func (h *RuleHost) HasClassificationsChanged(oldRec, newRec *domain.MarcRecord) bool {
	if oldRec == nil {
		oldRec = &domain.MarcRecord{}
	}
	if newRec == nil {
		newRec = &domain.MarcRecord{}
	}
	for _, check := range changeChecks {
		if h.anyConfigured(check.fields) && check.changed(oldRec, newRec) {
			return true
		}
	}
	return false
}

func (h *RuleHost) anyConfigured(fields []string) bool {
	for _, f := range fields {
		if h.isField[f] {
			return true
		}
	}
	return false
}

func identity(v string) string { return v }

// strip removes whitespace, brackets and the currency sign.
func strip(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '\u00A4':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

// strip10 strips the first ten characters of v.
func strip10(v string) string {
	runes := []rune(v)
	if len(runes) > 10 {
		runes = runes[:10]
	}
	return strip(string(runes))
}

func withMorO(f domain.Field) bool {
	return f.HasSubfield("m") || f.HasSubfield("o")
}

// matchValue reports whether any field/subfield value matches re.
func matchValue(rec *domain.MarcRecord, field, subfield string, re *regexp.Regexp) bool {
	for _, f := range rec.FieldsNamed(field) {
		for _, sf := range f.Subfields {
			if sf.Name == subfield && re.MatchString(sf.Value) {
				return true
			}
		}
	}
	return false
}

// firstValue returns the first field/subfield value among fields accepted by want.
func firstValue(rec *domain.MarcRecord, field, subfield string, want func(domain.Field) bool) string {
	for _, f := range rec.FieldsNamed(field) {
		if want != nil && !want(f) {
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

func subfieldChanged(o, n *domain.MarcRecord, value valueFunc, field, subfield string, want func(domain.Field) bool) bool {
	return value(firstValue(o, field, subfield, want)) != value(firstValue(n, field, subfield, want))
}

func fieldsNamed(rec *domain.MarcRecord, names ...string) []domain.Field {
	var result []domain.Field
	for _, f := range rec.Fields {
		for _, name := range names {
			if f.Name == name {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

func fieldByNameChanged(o, n *domain.MarcRecord, name string, value valueFunc, ignore ...string) bool {
	oldFields, newFields := o.FieldsNamed(name), n.FieldsNamed(name)
	var oldField, newField *domain.Field
	if len(oldFields) > 0 {
		oldField = &oldFields[0]
	}
	if len(newFields) > 0 {
		newField = &newFields[0]
	}
	return fieldChanged(oldField, newField, value, ignore...)
}

// fieldChanged compares two fields subfield by subfield. Every subfield of
// the old field, except ignored ones, must exist in the new field with an
// equal value.
func fieldChanged(oldField, newField *domain.Field, value valueFunc, ignore ...string) bool {
	switch {
	case oldField == nil && newField == nil:
		return false
	case oldField == nil || newField == nil:
		return true
	case len(oldField.Subfields) != len(newField.Subfields):
		return true
	}

	for _, osf := range oldField.Subfields {
		if contains(ignore, osf.Name) {
			continue
		}
		found := false
		for _, nsf := range newField.Subfields {
			if nsf.Name == osf.Name && value(nsf.Value) == value(osf.Value) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

// fieldSetChanged reports whether the two field lists differ in size or an
// old field has no unchanged counterpart.
func fieldSetChanged(oldFields, newFields []domain.Field, value valueFunc) bool {
	if len(oldFields) != len(newFields) {
		return true
	}
	for i := range oldFields {
		matched := false
		for j := range newFields {
			if !fieldChanged(&oldFields[i], &newFields[j], value) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
