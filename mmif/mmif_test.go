package mmif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const exampleDocument = `{
  "metadata": {"mmif": "http://mmif.clams.ai/0.4.0"},
  "documents": [
    {
      "@type": "http://mmif.clams.ai/0.4.0/vocabulary/TextDocument",
      "properties": {"id": "m1", "text": {"@value": "Jim Lehrer works for PBS in Washington."}}
    }
  ],
  "views": [
    {
      "id": "v_0",
      "metadata": {
        "app": "http://apps.clams.ai/spacy_nlp/0.0.6",
        "contains": {"http://vocab.lappsgrid.org/NamedEntity": {"document": "m1"}}
      },
      "annotations": [
        {
          "@type": "http://vocab.lappsgrid.org/NamedEntity",
          "properties": {"id": "ne1", "start": 0, "end": 10, "text": "Jim Lehrer", "category": "person", "root_i": 1}
        }
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(exampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "http://mmif.clams.ai/0.4.0", m.Metadata.Mmif)
	require.Len(t, m.Documents, 1)
	assert.Equal(t, "m1", m.Documents[0].Properties.GetString("id"))

	require.Len(t, m.Views, 1)
	view := m.Views[0]
	assert.Equal(t, "v_0", view.ID)
	assert.Equal(t, "m1", view.Metadata.Contains["http://vocab.lappsgrid.org/NamedEntity"].Document)

	require.Len(t, view.Annotations, 1)
	ann := view.Annotations[0]
	assert.Equal(t, "ne1", ann.ID())
	assert.Equal(t, "Jim Lehrer", ann.Properties.GetString("text"))
	start, ok := ann.Properties.GetInt("start")
	assert.True(t, ok)
	assert.Equal(t, int64(0), start)
	rootI, ok := ann.Properties.GetInt("root_i")
	assert.True(t, ok)
	assert.Equal(t, int64(1), rootI)
}

func TestParseRejectsNonMmif(t *testing.T) {
	_, err := Parse([]byte(`{"metadata":{}}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"metadata":`))
	assert.Error(t, err)
}

func TestPropertiesKeepInsertionOrder(t *testing.T) {
	p := Properties{}
	p.Set("id", "nel1")
	p.Set("root_i", 1)
	p.Set("text", "Jim Lehrer")
	p.Set("wikidata_id", "Q931148")
	p.Set("root_i", 2) // replacing must not reorder

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"nel1","root_i":2,"text":"Jim Lehrer","wikidata_id":"Q931148"}`, string(data))
}

func TestPropertiesRoundTrip(t *testing.T) {
	in := `{"root_i":1,"text":"PBS","label":"PBS","category":"organization","wikidata_id":"Q275905","id":"nel2"}`

	p := Properties{}
	require.NoError(t, p.UnmarshalJSON([]byte(in)))
	assert.Equal(t, []string{"root_i", "text", "label", "category", "wikidata_id", "id"}, p.Keys())

	out, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestMarshalRoundTripsPropertyOrder(t *testing.T) {
	m, err := Parse([]byte(exampleDocument))
	require.NoError(t, err)

	data, err := m.Marshal(false)
	require.NoError(t, err)

	props := gjson.GetBytes(data, "views.0.annotations.0.properties").Raw
	assert.Equal(t, `{"id":"ne1","start":0,"end":10,"text":"Jim Lehrer","category":"person","root_i":1}`, props)
}

func TestNewViewAssignsFreshIdentifiers(t *testing.T) {
	m, err := Parse([]byte(exampleDocument))
	require.NoError(t, err)

	view := m.NewView()
	assert.Equal(t, "v_1", view.ID)
	assert.NotNil(t, view.Annotations, "annotations must serialize as [] rather than null")

	// an existing view already claims v_2
	m.Views = append(m.Views, &View{ID: "v_2"})
	assert.Equal(t, "v_3", m.NewView().ID)
}

func TestNewAnnotationSetsIdentifier(t *testing.T) {
	m := &Mmif{Metadata: Metadata{Mmif: SpecURI}}
	view := m.NewView()
	view.NewContain("http://vocab.lappsgrid.org/LinkedNamedEntity", "v_0:m1")

	ann := view.NewAnnotation("http://vocab.lappsgrid.org/LinkedNamedEntity", "nel1")
	ann.Properties.Set("wikidata_id", "Q931148")

	data, err := m.Marshal(false)
	require.NoError(t, err)
	assert.Equal(t, "nel1", gjson.GetBytes(data, "views.0.annotations.0.properties.id").String())
	assert.Equal(t, "v_0:m1", gjson.GetBytes(data, `views.0.metadata.contains.http\://vocab\.lappsgrid\.org/LinkedNamedEntity.document`).String())
}
