package collection

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/user/ainspire/pkg/pipeline"
)

// ExportFileName is the suggested name for exported collections.
const ExportFileName = "ainspire-collection.json"

var (
	// ErrInvalidImport is returned when an import file is valid JSON but not
	// a collection. The store is left unchanged.
	ErrInvalidImport = errors.New("collection: invalid collection file")
	// ErrMalformedImport is returned when an import file is not valid JSON.
	ErrMalformedImport = errors.New("collection: file is not valid JSON")
	// ErrEmptyCollection is returned when there is nothing to download.
	ErrEmptyCollection = errors.New("collection: no images to download")
)

// requiredFields must be present on every imported record.
var requiredFields = []string{"id", "src", "classifications"}

// Export writes the classified images as a JSON array. Entries still
// waiting for classification are left out.
func (s *Store) Export(w io.Writer) error {
	records := s.Images()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return nil
}

// Import replaces the collection with the records in r. Either every record
// is valid and the collection is replaced, or nothing changes.
func (s *Store) Import(r io.Reader) (int, error) {
	records, err := Decode(r)
	if err != nil {
		return 0, err
	}
	s.ReplaceAll(records)
	return len(records), nil
}

// Decode parses and validates a collection file.
func Decode(r io.Reader) ([]pipeline.ReferenceImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: expected an array of images", ErrInvalidImport)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an array of images", ErrInvalidImport)
	}

	records := make([]pipeline.ReferenceImage, 0, len(raw))
	for i, elem := range raw {
		rec, err := decodeRecord(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidImport, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(elem json.RawMessage) (pipeline.ReferenceImage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
		return pipeline.ReferenceImage{}, errors.New("not an object")
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return pipeline.ReferenceImage{}, fmt.Errorf("missing %q", name)
		}
	}

	var rec pipeline.ReferenceImage
	if err := json.Unmarshal(elem, &rec); err != nil {
		return pipeline.ReferenceImage{}, err
	}
	if rec.ID == "" {
		return pipeline.ReferenceImage{}, errors.New("empty id")
	}
	if rec.Classifications == nil {
		rec.Classifications = pipeline.Classification{}
	}
	return rec, nil
}

// WriteZip writes every classified image into a ZIP archive.
func (s *Store) WriteZip(w io.Writer) error {
	images := s.Images()
	if len(images) == 0 {
		return ErrEmptyCollection
	}

	zw := zip.NewWriter(w)
	used := make(map[string]bool)
	for _, img := range images {
		mimeType, data, err := pipeline.ParseDataURL(img.Src)
		if err != nil {
			return fmt.Errorf("image %s: %w", img.ID, err)
		}
		name := uniqueName(archiveName(img, mimeType), used)
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

// archiveName builds "<source>_<seconds>s_<id>.<ext>".
func archiveName(img pipeline.ReferenceImage, mimeType string) string {
	base := strings.TrimSuffix(path.Base(img.SourceName), path.Ext(img.SourceName))
	base = sanitize(base)
	if base == "" {
		base = "frame"
	}
	ext := "jpg"
	if mimeType == "image/png" {
		ext = "png"
	}
	id := img.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%ds_%s.%s", base, int(math.Round(img.TimestampSeconds)), sanitize(id), ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r > 127:
			return r
		default:
			return '_'
		}
	}, s)
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	used[candidate] = true
	return candidate
}
