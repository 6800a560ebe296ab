package model

import (
	"encoding/json"
	"sort"
)

// Candidate is one extracted value attributed to the document and field it
// came from.
type Candidate struct {
	Value  Value        `json:"value"`
	Source DocumentKind `json:"source"`
	Field  FieldName    `json:"field"`
}

// ExtractedDocument holds the fields extracted from one classified file. A
// document whose parse failed carries only Err.
type ExtractedDocument struct {
	Kind   DocumentKind        `json:"kind"`
	Path   string              `json:"path"`
	Fields map[FieldName]Value `json:"fields,omitempty"`
	Err    string              `json:"error,omitempty"`
}

// FailedDocument builds the error marker for a file that could not be parsed.
func FailedDocument(kind DocumentKind, path string, err error) ExtractedDocument {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ExtractedDocument{Kind: kind, Path: path, Err: msg}
}

// Failed reports whether the document holds an error marker.
func (d ExtractedDocument) Failed() bool {
	return d.Err != ""
}

// Field returns the value for name, absent when missing.
func (d ExtractedDocument) Field(name FieldName) Value {
	if d.Fields == nil {
		return Absent()
	}
	return d.Fields[name]
}

// Candidate returns the attributed candidate for name.
func (d ExtractedDocument) Candidate(name FieldName) Candidate {
	return Candidate{Value: d.Field(name), Source: d.Kind, Field: name}
}

// FieldNames returns the document's field names in sorted order.
func (d ExtractedDocument) FieldNames() []FieldName {
	names := make([]FieldName, 0, len(d.Fields))
	for n := range d.Fields {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// PresentCount returns how many fields hold a value.
func (d ExtractedDocument) PresentCount() int {
	n := 0
	for _, v := range d.Fields {
		if !v.IsAbsent() {
			n++
		}
	}
	return n
}

// Corpus is the immutable set of extracted documents for one project, keyed
// by kind. Build it with NewCorpus.
type Corpus struct {
	docs map[DocumentKind]ExtractedDocument
}

// NewCorpus folds docs into a Corpus. Unknown kinds are dropped. For a
// repeated kind the first successfully parsed document is kept; a failed
// document is only kept while no successful one of its kind exists.
func NewCorpus(docs ...ExtractedDocument) Corpus {
	c := Corpus{docs: make(map[DocumentKind]ExtractedDocument, len(docs))}
	for _, d := range docs {
		if d.Kind == KindUnknown || d.Kind == "" {
			continue
		}
		prev, seen := c.docs[d.Kind]
		if !seen || (prev.Failed() && !d.Failed()) {
			c.docs[d.Kind] = cloneDocument(d)
		}
	}
	return c
}

func cloneDocument(d ExtractedDocument) ExtractedDocument {
	if d.Fields == nil {
		return d
	}
	fields := make(map[FieldName]Value, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	d.Fields = fields
	return d
}

// Get returns the document of the given kind.
func (c Corpus) Get(kind DocumentKind) (ExtractedDocument, bool) {
	d, ok := c.docs[kind]
	if !ok {
		return ExtractedDocument{}, false
	}
	return cloneDocument(d), true
}

// Lookup returns the value of field in the document of kind. Missing
// documents, failed documents and missing fields are all absent.
func (c Corpus) Lookup(kind DocumentKind, field FieldName) Value {
	d, ok := c.docs[kind]
	if !ok {
		return Absent()
	}
	return d.Field(field)
}

// Has reports whether a document of kind was parsed successfully.
func (c Corpus) Has(kind DocumentKind) bool {
	d, ok := c.docs[kind]
	return ok && !d.Failed()
}

// Kinds returns the kinds present, in report column order.
func (c Corpus) Kinds() []DocumentKind {
	var out []DocumentKind
	for _, k := range AllDocumentKinds() {
		if _, ok := c.docs[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Documents returns copies of all documents in report column order.
func (c Corpus) Documents() []ExtractedDocument {
	out := make([]ExtractedDocument, 0, len(c.docs))
	for _, k := range c.Kinds() {
		out = append(out, cloneDocument(c.docs[k]))
	}
	return out
}

// Len returns the number of documents held.
func (c Corpus) Len() int {
	return len(c.docs)
}

// Failures returns the documents that carry an error marker.
func (c Corpus) Failures() []ExtractedDocument {
	var out []ExtractedDocument
	for _, d := range c.Documents() {
		if d.Failed() {
			out = append(out, d)
		}
	}
	return out
}

// MarshalJSON encodes the corpus as its documents in report column order.
func (c Corpus) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Documents())
}
