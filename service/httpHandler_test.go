package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logger "github.com/Financial-Times/go-logger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testHandler(linker entityLinker) *Handler {
	return NewHandler(
		NewEntityLinkingService(testWhitelist, linker),
		logger.NewUPPLogger("app-nel-test", "info"),
	)
}

func TestPostAnnotates(t *testing.T) {
	handler := testHandler(&stubLinker{entities: testEntities()})

	req := httptest.NewRequest("POST", "http://example.com/", strings.NewReader(inputWithViewLevelDocument()))
	req.Header.Set("X-Request-Id", "tid_testing")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, "http://mmif.clams.ai/0.4.0", gjson.Get(body, "metadata.mmif").String())
	require.Equal(t, int64(2), gjson.Get(body, "views.#").Int())
	assert.Equal(t, "Q931148", gjson.Get(body, "views.1.annotations.0.properties.wikidata_id").String())
	assert.NotEmpty(t, gjson.Get(body, "views.1.annotations.0.properties.description").String())
	assert.NotEmpty(t, gjson.Get(body, "views.1.annotations.0.properties.url").String())
}

func TestPostRejectsNonMmifBody(t *testing.T) {
	handler := testHandler(&stubLinker{})

	req := httptest.NewRequest("POST", "http://example.com/", strings.NewReader(`{"foo":"bar"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "message").String())
}

func TestPostWithFailingLinkerReturnsServiceUnavailable(t *testing.T) {
	handler := testHandler(&stubLinker{err: assert.AnError})

	req := httptest.NewRequest("POST", "http://example.com/", strings.NewReader(inputWithViewLevelDocument()))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetReturnsAppMetadata(t *testing.T) {
	handler := testHandler(&stubLinker{})

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, AppIdentifier, gjson.Get(body, "identifier").String())
	assert.Equal(t, "NEL with Wikidata", gjson.Get(body, "name").String())
	assert.Equal(t, NamedEntityURI, gjson.Get(body, "input.0").String())
	assert.Equal(t, LinkedNamedEntityURI, gjson.Get(body, "output.0").String())
}

func TestUnsupportedMethod(t *testing.T) {
	handler := testHandler(&stubLinker{})

	req := httptest.NewRequest("DELETE", "http://example.com/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
