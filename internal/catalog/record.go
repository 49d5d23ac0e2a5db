package catalog

import (
	"sort"
)

// Record describes one fish species entry in the collection.
type Record struct {
	// Key is the collection key the record was stored under. It is not part
	// of the wire object.
	Key                string `json:"key" yaml:"key"`
	Digest             string `json:"hash" yaml:"hash"`
	Name               string `json:"name" yaml:"name"`
	Habitat            string `json:"habitat" yaml:"habitat"`
	ScientificName     string `json:"scientific" yaml:"scientific"`
	Size               string `json:"size" yaml:"size"`
	ConservationStatus string `json:"status" yaml:"status"`
}

// Collection is an immutable, decoded record collection.
type Collection struct {
	byDigest map[string]Record
	records  []Record
}

func newCollection(records []Record) *Collection {
	sorted := append([]Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	byDigest := make(map[string]Record, len(sorted))
	for _, record := range sorted {
		byDigest[record.Digest] = record
	}
	return &Collection{byDigest: byDigest, records: sorted}
}

// Match returns the record whose stored hash equals value exactly.
// Comparison is case-sensitive and the value is not validated.
func (c *Collection) Match(value string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	record, ok := c.byDigest[value]
	return record, ok
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns a copy of all records sorted by key.
func (c *Collection) Records() []Record {
	if c == nil {
		return nil
	}
	return append([]Record(nil), c.records...)
}
