package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"oceaneye/internal/catalog"
)

const clownfishBody = `{"1": {"hash":"h1", "name":"Clownfish", "habitat":"Reef", "scientific":"Amphiprioninae", "size":"10cm", "status":"Least Concern"}}`

func TestDecodeClownfishScenario(t *testing.T) {
	collection, err := catalog.Decode([]byte(clownfishBody))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if collection.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", collection.Len())
	}
	record, ok := collection.Match("h1")
	if !ok {
		t.Fatal("expected h1 to match")
	}
	want := catalog.Record{
		Key:                "1",
		Digest:             "h1",
		Name:               "Clownfish",
		Habitat:            "Reef",
		ScientificName:     "Amphiprioninae",
		Size:               "10cm",
		ConservationStatus: "Least Concern",
	}
	if record != want {
		t.Fatalf("unexpected record: %#v", record)
	}
	if _, ok := collection.Match("h2"); ok {
		t.Fatal("expected h2 to miss")
	}
	if _, ok := collection.Match("H1"); ok {
		t.Fatal("expected matching to be case-sensitive")
	}
}

func TestDecodeNullIsEmptyCollection(t *testing.T) {
	collection, err := catalog.Decode([]byte(" null \n"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if collection.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", collection.Len())
	}
	if _, ok := collection.Match("h1"); ok {
		t.Fatal("expected no match in empty collection")
	}
}

func TestDecodeRecordsSortedByKey(t *testing.T) {
	body := `{
		"b": {"hash":"h2","name":"Tang","habitat":"Reef","scientific":"Paracanthurus hepatus","size":"30cm","status":"Least Concern"},
		"a": {"hash":"h1","name":"Clownfish","habitat":"Reef","scientific":"Amphiprioninae","size":"10cm","status":"Least Concern","extra":1}
	}`
	collection, err := catalog.Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	records := collection.Records()
	if len(records) != 2 || records[0].Key != "a" || records[1].Key != "b" {
		t.Fatalf("unexpected record order: %#v", records)
	}
	records[0].Name = "mutated"
	if again := collection.Records(); again[0].Name != "Clownfish" {
		t.Fatal("Records must return a copy")
	}
}

func TestDecodeRejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKey   string
		wantField string
	}{
		{name: "missing habitat", body: `{"1":{"hash":"h1","name":"Clownfish","scientific":"Amphiprioninae","size":"10cm","status":"Least Concern"}}`, wantKey: "1", wantField: "habitat"},
		{name: "non string size", body: `{"1":{"hash":"h1","name":"Clownfish","habitat":"Reef","scientific":"Amphiprioninae","size":10,"status":"Least Concern"}}`, wantKey: "1", wantField: "size"},
		{name: "null status", body: `{"1":{"hash":"h1","name":"Clownfish","habitat":"Reef","scientific":"Amphiprioninae","size":"10cm","status":null}}`, wantKey: "1", wantField: "status"},
		{name: "record not object", body: `{"1":"h1"}`, wantKey: "1"},
		{name: "array body", body: `[{"hash":"h1"}]`},
		{name: "string body", body: `"hello"`},
		{name: "empty body", body: ``},
		{name: "truncated", body: `{"1":{"hash":"h1"`},
		{name: "trailing garbage", body: clownfishBody + ` trailing`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection, err := catalog.Decode([]byte(tt.body))
			if err == nil {
				t.Fatalf("expected decode error, got collection with %d records", collection.Len())
			}
			var decodeErr *catalog.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if decodeErr.Key != tt.wantKey {
				t.Fatalf("expected key %q, got %q", tt.wantKey, decodeErr.Key)
			}
			if decodeErr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, decodeErr.Field)
			}
		})
	}
}

func TestDecodeRejectsDuplicateDigests(t *testing.T) {
	body := `{
		"1": {"hash":"h1","name":"Clownfish","habitat":"Reef","scientific":"Amphiprioninae","size":"10cm","status":"Least Concern"},
		"2": {"hash":"h1","name":"Impostor","habitat":"Reef","scientific":"Amphiprioninae","size":"10cm","status":"Least Concern"}
	}`
	_, err := catalog.Decode([]byte(body))
	if !errors.Is(err, catalog.ErrDuplicateDigest) {
		t.Fatalf("expected ErrDuplicateDigest, got %v", err)
	}
	if !catalog.IsDecode(err) {
		t.Fatalf("expected decode error, got %T", err)
	}
	if !strings.Contains(err.Error(), `record "2"`) || !strings.Contains(err.Error(), `"1"`) {
		t.Fatalf("expected both keys in message, got %q", err.Error())
	}
}
