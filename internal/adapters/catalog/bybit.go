package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"rektbot/pkg/errors"
	"rektbot/pkg/logger"
)

const (
	instrumentsPath = "/v5/market/instruments-info"
	pageLimit       = "1000"
)

// Client fetches the tradable instrument universe from the venue's REST
// catalog. Called once at startup; the feed's reconnect loop does not
// refresh it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a catalog client
func NewClient(baseURL string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log.With("component", "catalog"),
	}
}

// Symbols returns every linear-perpetual symbol identifier the venue lists.
// Fails with ErrCatalogUnavailable on any network or parse error; the caller
// must tolerate an empty result and keep the pipeline running.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	cursor := ""

	for {
		page, next, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, page...)

		if next == "" {
			break
		}
		cursor = next
	}

	c.log.Infow("Fetched symbol catalog", "symbols", len(symbols))
	return symbols, nil
}

func (c *Client) fetchPage(ctx context.Context, cursor string) ([]string, string, error) {
	var res struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol string `json:"symbol"`
			} `json:"list"`
			NextPageCursor string `json:"nextPageCursor"`
		} `json:"result"`
	}

	params := url.Values{
		"category": []string{"linear"},
		"limit":    []string{pageLimit},
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	reqURL := c.baseURL + instrumentsPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCatalogUnavailable, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCatalogUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCatalogUnavailable, err.Error())
	}
	if resp.StatusCode >= 400 {
		return nil, "", errors.Wrapf(errors.ErrCatalogUnavailable, "http %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, &res); err != nil {
		return nil, "", errors.Wrap(errors.ErrCatalogUnavailable, err.Error())
	}
	if res.RetCode != 0 {
		return nil, "", errors.Wrapf(errors.ErrCatalogUnavailable, "venue error %d: %s", res.RetCode, res.RetMsg)
	}

	symbols := make([]string, 0, len(res.Result.List))
	for _, item := range res.Result.List {
		if item.Symbol != "" {
			symbols = append(symbols, item.Symbol)
		}
	}

	return symbols, res.Result.NextPageCursor, nil
}
