package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `{
  "searchinfo": {"search": "Jim Lehrer"},
  "search": [
    {
      "id": "Q931148",
      "title": "Q931148",
      "url": "//www.wikidata.org/wiki/Q931148",
      "concepturi": "http://www.wikidata.org/entity/Q931148",
      "label": "Jim Lehrer",
      "description": "American journalist"
    }
  ],
  "success": 1
}`

func TestSearchEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "wbsearchentities", q.Get("action"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "item", q.Get("type"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "Jim Lehrer", q.Get("search"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 1)
	entities, err := client.SearchEntities(context.Background(), "Jim Lehrer")
	require.NoError(t, err)

	require.Len(t, entities, 1)
	assert.Equal(t, "Q931148", entities[0].ID)
	assert.Equal(t, "Jim Lehrer", entities[0].Label)
	assert.Equal(t, "American journalist", entities[0].Description)
	assert.Equal(t, "//www.wikidata.org/wiki/Q931148", entities[0].URL)
}

func TestSearchEntitiesNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchinfo":{"search":"xyzzy"},"search":[],"success":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 1)
	entities, err := client.SearchEntities(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestSearchEntitiesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":"param-missing","info":"A parameter that is required was missing."}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 1)
	_, err := client.SearchEntities(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param-missing")
}

func TestSearchEntitiesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 1)
	_, err := client.SearchEntities(context.Background(), "anything")
	assert.Error(t, err)
}

func TestConnectivityCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"search":[],"success":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 1)
	assert.NoError(t, client.ConnectivityCheck())
}

func TestDefaults(t *testing.T) {
	client := NewClient("", "", 0)
	assert.Equal(t, DefaultAPIURL, client.apiURL)
	assert.Equal(t, DefaultLanguage, client.language)
	assert.Equal(t, DefaultSearchLimit, client.limit)
}
