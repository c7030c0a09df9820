package marcxchange

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// Reader streams the records of a MarcXchange document. The document may be
// a single record or a collection of records.
type Reader struct {
	decoder *xml.Decoder
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: xml.NewDecoder(r)}
}

// Read returns the next record, or io.EOF when the document is exhausted.
func (r *Reader) Read() (*domain.MarcRecord, error) {
	for {
		tok, err := r.decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("reading marcxchange: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}
		rec, err := decodeRecord(r.decoder, start)
		if err != nil {
			return nil, fmt.Errorf("decoding marcxchange record: %w", err)
		}
		return rec, nil
	}
}
