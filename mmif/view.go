package mmif

// View is a set of annotations contributed by one tool.
type View struct {
	ID          string        `json:"id"`
	Metadata    ViewMetadata  `json:"metadata"`
	Annotations []*Annotation `json:"annotations"`
}

type ViewMetadata struct {
	App        string                    `json:"app"`
	Timestamp  string                    `json:"timestamp,omitempty"`
	Parameters map[string]string         `json:"parameters,omitempty"`
	Contains   map[string]ContainsDetail `json:"contains"`
}

// ContainsDetail describes one annotation type a view declares, most notably
// the document its annotations are anchored to.
type ContainsDetail struct {
	Document string `json:"document,omitempty"`
}

// NewContain declares that the view holds annotations of the given type.
// An empty document means the anchors live on the annotations themselves.
func (v *View) NewContain(atType string, document string) {
	if v.Metadata.Contains == nil {
		v.Metadata.Contains = map[string]ContainsDetail{}
	}
	v.Metadata.Contains[atType] = ContainsDetail{Document: document}
}

// NewAnnotation appends an annotation of the given type and identifier to the
// view and returns it so the caller can fill in its properties.
func (v *View) NewAnnotation(atType string, id string) *Annotation {
	a := &Annotation{AtType: atType}
	a.Properties.Set("id", id)
	v.Annotations = append(v.Annotations, a)
	return a
}
