package mmif

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// SpecURI is the MMIF specification version this package reads and writes.
const SpecURI = "http://mmif.clams.ai/0.4.0"

// Mmif is a multimedia interchange document: a list of media documents plus
// the views that annotation tools have added over them.
type Mmif struct {
	Metadata  Metadata   `json:"metadata"`
	Documents []Document `json:"documents"`
	Views     []*View    `json:"views"`
}

type Metadata struct {
	Mmif string `json:"mmif"`
}

type Document struct {
	AtType     string     `json:"@type"`
	Properties Properties `json:"properties"`
}

// Parse reads an MMIF document from its JSON serialization.
func Parse(data []byte) (*Mmif, error) {
	m := &Mmif{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, "unmarshalling MMIF document")
	}
	if m.Metadata.Mmif == "" {
		return nil, errors.New("not an MMIF document: missing metadata.mmif")
	}
	return m, nil
}

// Marshal serializes the document, optionally indented.
func (m *Mmif) Marshal(pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(m, "", "  ")
	} else {
		data, err = json.Marshal(m)
	}
	if err != nil {
		return nil, errors.Wrap(err, "marshalling MMIF document")
	}
	return data, nil
}

// NewView appends an empty view with a fresh "v_N" identifier and returns it.
func (m *Mmif) NewView() *View {
	ids := make(map[string]bool, len(m.Views))
	for _, v := range m.Views {
		ids[v.ID] = true
	}
	n := len(m.Views)
	id := fmt.Sprintf("v_%d", n)
	for ids[id] {
		n++
		id = fmt.Sprintf("v_%d", n)
	}
	view := &View{
		ID:          id,
		Metadata:    ViewMetadata{Contains: map[string]ContainsDetail{}},
		Annotations: []*Annotation{},
	}
	m.Views = append(m.Views, view)
	return view
}
