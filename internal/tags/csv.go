package tags

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidInput is returned when an export cannot be read as a table.
var ErrInvalidInput = errors.New("invalid raw export")

const utf8BOM = "\ufeff"

// ReadRaw parses a delimited export. The first row is the header. Rows may
// be ragged; missing trailing fields are treated as absent.
func ReadRaw(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidInput, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	if len(header) == 1 && strings.TrimSpace(header[0]) == "" {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidInput)
	}

	var records []RawRecord
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		records = append(records, RawRecord{Columns: header, Values: values})
	}
	return records, nil
}

// ReadRawFile opens path and parses it with ReadRaw.
func ReadRawFile(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw export: %w", err)
	}
	defer f.Close()
	return ReadRaw(f)
}

// WriteCanonical writes the header followed by one row per record.
func WriteCanonical(w io.Writer, records []CanonicalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCanonicalFile creates path and writes the records to it.
func WriteCanonicalFile(path string, records []CanonicalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create canonical file: %w", err)
	}
	if err := WriteCanonical(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write canonical file: %w", err)
	}
	return f.Close()
}

// NormalizeFile reads a raw export from src and writes the canonical report
// to dst, returning the normalized records.
func NormalizeFile(src, dst string) ([]CanonicalRecord, error) {
	raws, err := ReadRawFile(src)
	if err != nil {
		return nil, err
	}
	records := Normalize(raws)
	if err := WriteCanonicalFile(dst, records); err != nil {
		return nil, err
	}
	return records, nil
}
