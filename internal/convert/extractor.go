package convert

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// localName strips a namespace prefix ("ns:Name") or Clark notation
// ("{uri}Name") from an element name. The decoder already resolves
// namespaces on document elements; this covers configured names.
func localName(name string) string {
	if i := strings.LastIndexAny(name, ":}"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ExtractRecords walks the document and returns one Record per element
// whose local name matches recordElement, wherever it sits in the tree
// and whatever namespace it carries. A document with no matching
// element is not an error: it yields zero records and a warning note.
// Malformed XML returns an error wrapping ErrParse.
func ExtractRecords(xmlText, recordElement string) ([]Record, []string, error) {
	want := localName(recordElement)
	dec := xml.NewDecoder(strings.NewReader(xmlText))

	var (
		records    []Record
		notes      []string
		sawElement bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true
		if start.Name.Local != want {
			continue
		}
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		records = append(records, rec)
	}
	if !sawElement {
		return nil, nil, fmt.Errorf("%w: document contains no elements", ErrParse)
	}
	if len(records) == 0 {
		notes = append(notes, fmt.Sprintf("no %s elements found in document", want))
	}
	return records, notes, nil
}

// decodeRecord consumes tokens up to the record's closing tag. Each
// direct child element becomes a field keyed by its local name, value =
// trimmed text content; an empty or self-closed child is kept with
// value "". A repeated child name overwrites the earlier value.
func decodeRecord(dec *xml.Decoder) (Record, error) {
	rec := Record{Values: make(map[string]string)}
	for {
		tok, err := dec.Token()
		if err != nil {
			// EOF inside a record means an unterminated element.
			return Record{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			text, err := collectText(dec)
			if err != nil {
				return Record{}, err
			}
			if _, seen := rec.Values[name]; !seen {
				rec.Fields = append(rec.Fields, name)
			}
			rec.Values[name] = strings.TrimSpace(text)
		case xml.EndElement:
			return rec, nil
		}
	}
}

// collectText concatenates all character data inside the current
// element, including nested elements, and consumes its closing tag.
func collectText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return sb.String(), nil
}
