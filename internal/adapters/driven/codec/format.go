// Package codec selects a bulk record reader from a file name.
package codec

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec/iso2709"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec/marcxchange"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Format is a bulk record file format.
type Format string

// Supported formats.
const (
	FormatMarcXchange Format = "marcxchange"
	FormatISO2709     Format = "iso2709"
)

// FormatFor picks the format from the extension of name.
// .iso, .mrc and .iso2709 files are ISO 2709; everything else is MarcXchange.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".iso", ".mrc", ".iso2709":
		return FormatISO2709
	default:
		return FormatMarcXchange
	}
}

// NewReader returns a record reader for the format of name over r.
func NewReader(name string, r io.Reader) driving.RecordReader {
	if FormatFor(name) == FormatISO2709 {
		return iso2709.NewReader(r)
	}
	return marcxchange.NewReader(r)
}

// IsSupported reports whether name has an extension the readers handle.
func IsSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".iso", ".mrc", ".iso2709":
		return true
	default:
		return false
	}
}
