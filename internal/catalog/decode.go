package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var recordFields = []string{"hash", "name", "habitat", "scientific", "size", "status"}

// Decode parses a record collection body. The body must be a JSON object of
// records or the literal null, which yields an empty collection. Every record
// must carry all six fields as strings and no two records may share a hash.
func Decode(body []byte) (*Collection, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Reason: "empty body"}
	}
	if trimmed[0] != '{' && !bytes.Equal(trimmed, []byte("null")) {
		return nil, &DecodeError{Reason: "body is not a JSON object"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &DecodeError{Reason: "malformed JSON", Err: err}
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]Record, 0, len(keys))
	owners := make(map[string]string, len(keys))
	for _, key := range keys {
		record, err := decodeRecord(key, raw[key])
		if err != nil {
			return nil, err
		}
		if owner, ok := owners[record.Digest]; ok {
			return nil, &DecodeError{
				Key:    key,
				Field:  "hash",
				Reason: fmt.Sprintf("same hash as record %q", owner),
				Err:    ErrDuplicateDigest,
			}
		}
		owners[record.Digest] = key
		records = append(records, record)
	}
	return newCollection(records), nil
}

func decodeRecord(key string, data json.RawMessage) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, &DecodeError{Key: key, Reason: "record is not an object"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Record{}, &DecodeError{Key: key, Reason: "malformed record", Err: err}
	}

	values := make(map[string]string, len(recordFields))
	for _, name := range recordFields {
		rawValue, ok := fields[name]
		if !ok {
			return Record{}, &DecodeError{Key: key, Field: name, Reason: "missing field"}
		}
		var value string
		if bytes.Equal(bytes.TrimSpace(rawValue), []byte("null")) {
			return Record{}, &DecodeError{Key: key, Field: name, Reason: "field is null"}
		}
		if err := json.Unmarshal(rawValue, &value); err != nil {
			return Record{}, &DecodeError{Key: key, Field: name, Reason: "field is not a string"}
		}
		values[name] = value
	}

	return Record{
		Key:                key,
		Digest:             values["hash"],
		Name:               values["name"],
		Habitat:            values["habitat"],
		ScientificName:     values["scientific"],
		Size:               values["size"],
		ConservationStatus: values["status"],
	}, nil
}
