package fields

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError aggregates every failed constraint of one validation run,
// one message per failure. It is never partial: a record either validates
// cleanly or yields the complete list.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// Schema is a compiled, immutable validation schema. It is loaded once and
// safe for unlimited concurrent readers.
type Schema struct {
	compiled     *gojsonschema.Schema
	descriptions map[string]string
}

// Compile builds a Schema from a JSON-Schema document. Per-property
// description strings are indexed by field path so that failures can be
// rendered with the schema author's wording.
func Compile(doc map[string]interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	s := &Schema{
		compiled:     compiled,
		descriptions: make(map[string]string),
	}
	collectDescriptions("", doc, s.descriptions)
	return s, nil
}

// MustCompile is Compile for statically declared schemas.
func MustCompile(doc map[string]interface{}) *Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return s
}

func collectDescriptions(prefix string, doc map[string]interface{}, out map[string]string) {
	props, ok := doc["properties"].(map[string]interface{})
	if !ok {
		return
	}
	for name, raw := range props {
		prop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if desc, ok := prop["description"].(string); ok && desc != "" {
			out[path] = desc
		}
		collectDescriptions(path, prop, out)
	}
}

// Validate checks the merged record against the schema. It returns nil when
// every constraint holds, otherwise a single *ValidationError carrying one
// message per failed constraint: the property's description when the schema
// provides one, else the library's failure string with its instance-path
// prefix stripped.
func (s *Schema) Validate(record Record) error {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(map[string]interface{}(record)))
	if err != nil {
		return &ValidationError{Messages: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, failure := range result.Errors() {
		msgs = append(msgs, s.renderFailure(failure))
	}
	return &ValidationError{Messages: msgs}
}

func (s *Schema) renderFailure(failure gojsonschema.ResultError) string {
	if desc, ok := s.descriptions[failure.Field()]; ok {
		return desc
	}
	return stripInstancePath(failure.String())
}

// The library prefixes failure paths with an instance-root marker; user
// facing messages drop it.
func stripInstancePath(msg string) string {
	msg = strings.TrimPrefix(msg, "(root): ")
	msg = strings.TrimPrefix(msg, "(root).")
	return msg
}
