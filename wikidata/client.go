package wikidata

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL   = "https://www.wikidata.org/w/api.php"
	DefaultLanguage = "en"
	// The first search result is the most likely entity, which is all the
	// mapper needs.
	DefaultSearchLimit = 1

	defaultTimeout    = 10 * time.Second
	defaultRetryMax   = 3
	connectivityQuery = "wikidata"
)

// Entity is one result of a wbsearchentities lookup.
type Entity struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ConceptURI  string `json:"concepturi"`
}

type searchResponse struct {
	Search []Entity `json:"search"`
	Error  *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Client searches the Wikidata action API for entities by name.
type Client struct {
	apiURL     string
	language   string
	limit      int
	httpClient *http.Client
}

func NewClient(apiURL string, language string, limit int) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.HTTPClient.Timeout = defaultTimeout
	retryClient.Logger = nil

	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	return &Client{
		apiURL:     apiURL,
		language:   language,
		limit:      limit,
		httpClient: retryClient.StandardClient(),
	}
}

// SearchEntities looks up items matching the given text and returns them in
// relevance order. An empty slice means Wikidata knows nothing by that name.
func (c *Client) SearchEntities(ctx context.Context, search string) ([]Entity, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("format", "json")
	params.Set("language", c.language)
	params.Set("type", "item")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("search", search)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building wikidata request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "querying wikidata")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("wikidata responded with HTTP %d", resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading wikidata response")
	}

	result := searchResponse{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "unmarshalling wikidata response")
	}
	if result.Error != nil {
		return nil, errors.Errorf("wikidata error %s: %s", result.Error.Code, result.Error.Info)
	}

	log.WithField("search", search).WithField("results", len(result.Search)).Debug("wikidata entity search")
	return result.Search, nil
}

// ConnectivityCheck runs a cheap search so the healthcheck can tell whether
// the API is reachable and answering.
func (c *Client) ConnectivityCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := c.SearchEntities(ctx, connectivityQuery)
	return err
}
