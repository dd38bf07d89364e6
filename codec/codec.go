// Package codec selects the JSON implementation used for snapshot manifests.
//
// Both codecs produce standard JSON, so a manifest written with one decodes
// with the other.
package codec

import (
	"encoding/json"
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Codec marshals manifests. Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is used when no codec is configured.
var Default Codec = GoJSON{}

// GoJSON is backed by github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }

// JSON is backed by encoding/json. It is kept as a reference encoder for
// interoperability tests and for callers that need exact stdlib behavior.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// Parse returns the codec called name. The empty name selects Default.
func Parse(name string) (Codec, error) {
	switch name {
	case "":
		return Default, nil
	case GoJSON{}.Name():
		return GoJSON{}, nil
	case JSON{}.Name():
		return JSON{}, nil
	}
	return nil, fmt.Errorf("codec: unknown codec %q", name)
}

// MustMarshal panics on error. Intended for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s: %w", c.Name(), err))
	}
	return b
}
