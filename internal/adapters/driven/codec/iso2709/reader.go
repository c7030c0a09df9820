// Package iso2709 reads MARC records in the ISO 2709 exchange format.
//
// Each record starts with a 24 byte leader whose first five digits give the
// record length and whose bytes 12-16 give the base address of the field
// data. A directory of 12 byte entries (tag, length, start) follows, closed
// by a field terminator. Variable fields carry two indicators and subfields
// introduced by the subfield delimiter.
package iso2709

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

const (
	leaderSize         = 24
	lengthSize         = 5
	directoryEntrySize = 12

	subfieldDelimiter = 0x1f
	fieldTerminator   = 0x1e
	recordTerminator  = 0x1d
)

// ErrBadRecord indicates a record that does not follow the ISO 2709 layout.
var ErrBadRecord = errors.New("bad iso2709 record")

// Reader streams records from an ISO 2709 file.
type Reader struct {
	r     *bufio.Reader
	count int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record, or io.EOF at the end of input.
func (r *Reader) Read() (*domain.MarcRecord, error) {
	raw, err := r.next()
	if err != nil {
		return nil, err
	}
	r.count++
	rec, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", r.count, err)
	}
	return rec, nil
}

func (r *Reader) next() ([]byte, error) {
	// Tolerate line breaks between records.
	for {
		b, err := r.r.Peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] != '\n' && b[0] != '\r' {
			break
		}
		_, _ = r.r.Discard(1)
	}

	header := make([]byte, lengthSize)
	if _, err := io.ReadFull(r.r, header); err != nil {
		return nil, fmt.Errorf("reading record length: %w", unexpected(err))
	}
	length, err := number(header)
	if err != nil || length <= leaderSize {
		return nil, fmt.Errorf("record prefix invalid (%q): %w", header, ErrBadRecord)
	}

	raw := make([]byte, length)
	copy(raw, header)
	if _, err := io.ReadFull(r.r, raw[lengthSize:]); err != nil {
		return nil, fmt.Errorf("reading record body: %w", unexpected(err))
	}
	return raw, nil
}

// Parse decodes one raw ISO 2709 record including its leader.
func Parse(raw []byte) (*domain.MarcRecord, error) {
	n := len(raw)
	if n <= leaderSize || raw[n-1] != recordTerminator {
		return nil, fmt.Errorf("record suffix invalid: %w", ErrBadRecord)
	}
	base, err := number(raw[12:17])
	if err != nil || base <= leaderSize || base > n {
		return nil, fmt.Errorf("base address invalid (%q): %w", raw[12:17], ErrBadRecord)
	}

	rec := &domain.MarcRecord{}
	for pos := leaderSize; pos+directoryEntrySize <= base && raw[pos] != fieldTerminator; pos += directoryEntrySize {
		entry := raw[pos : pos+directoryEntrySize]
		tag := string(entry[:3])
		fieldLength, err1 := number(entry[3:7])
		start, err2 := number(entry[7:12])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("directory entry %q invalid: %w", entry, ErrBadRecord)
		}
		from, to := base+start, base+start+fieldLength
		if from < base || to > n || fieldLength < 1 {
			return nil, fmt.Errorf("field %s out of bounds: %w", tag, ErrBadRecord)
		}
		rec.Append(parseField(tag, raw[from:to-1]))
	}
	return rec, nil
}

// number parses an unsigned decimal leader or directory value.
func number(b []byte) (int, error) {
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", b)
		}
	}
	return strconv.Atoi(string(b))
}

func parseField(tag string, data []byte) domain.Field {
	if tag < "010" && bytes.IndexByte(data, subfieldDelimiter) < 0 {
		return domain.NewField(tag, "", domain.Subfield{Value: string(data)})
	}

	i := bytes.IndexByte(data, subfieldDelimiter)
	if i < 0 {
		i = len(data)
	}
	f := domain.NewField(tag, string(data[:i]))
	data = data[i:]
	for len(data) > 0 {
		data = data[1:]
		end := bytes.IndexByte(data, subfieldDelimiter)
		if end < 0 {
			end = len(data)
		}
		if end > 0 {
			// Subfield codes are single characters; values may be UTF-8.
			code, value := decodeCode(data[:end])
			f.Subfields = append(f.Subfields, domain.Subfield{Name: code, Value: value})
		}
		data = data[end:]
	}
	return f
}

func decodeCode(b []byte) (string, string) {
	s := string(b)
	for i := range s {
		if i > 0 {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
