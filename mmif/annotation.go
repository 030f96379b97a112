package mmif

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Annotation is a single typed annotation within a view.
type Annotation struct {
	AtType     string     `json:"@type"`
	Properties Properties `json:"properties"`
}

// ID returns the annotation's identifier property.
func (a *Annotation) ID() string {
	return a.Properties.GetString("id")
}

// Properties is a JSON object that keeps its keys in insertion order, so a
// document round-trips with its properties laid out the way the producing
// tool wrote them.
type Properties struct {
	keys   []string
	values map[string]interface{}
}

// Set adds or replaces a property. A new key is appended after the existing
// ones.
func (p *Properties) Set(key string, value interface{}) {
	if p.values == nil {
		p.values = map[string]interface{}{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the raw property value.
func (p *Properties) Get(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether the property is present.
func (p *Properties) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// GetString returns the property as a string, or "" when absent or not a
// string.
func (p *Properties) GetString(key string) string {
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return ""
}

// GetInt returns the property as an integer. Numbers arrive from the decoder
// as json.Number.
func (p *Properties) GetInt(key string) (int64, bool) {
	switch v := p.values[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p Properties) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "marshalling property %q", key)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "reading properties")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("properties must be a JSON object")
	}

	p.keys = nil
	p.values = map[string]interface{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "reading property name")
		}
		key := tok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "reading property %q", key)
		}
		p.Set(key, value)
	}
	return nil
}
