package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

// Client talks to the upstream catalog provider. Credentials are sent as
// basic auth and never leave the server.
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
}

func NewClient(baseURL, consumerKey, consumerSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     consumerKey,
		secret:  consumerSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchRaw returns the upstream product document untouched, for proxying.
func (c *Client) FetchRaw(ctx context.Context, productID int64) ([]byte, error) {
	resp, err := c.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned status %d", fault.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog response: %v", fault.ErrUpstream, err)
	}
	return body, nil
}

// FetchItem decodes the fields the storefront needs from the upstream
// product document.
func (c *Client) FetchItem(ctx context.Context, productID int64) (*models.CatalogItem, error) {
	raw, err := c.FetchRaw(ctx, productID)
	if err != nil {
		return nil, err
	}

	var doc struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Price       string `json:"price"`
		Description string `json:"description"`
		Images      []struct {
			Src string `json:"src"`
		} `json:"images"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode catalog product: %v", fault.ErrUpstream, err)
	}

	item := &models.CatalogItem{
		ID:          doc.ID,
		Name:        doc.Name,
		Price:       doc.Price,
		Description: doc.Description,
	}
	for _, img := range doc.Images {
		item.Images = append(item.Images, img.Src)
	}
	return item, nil
}

func (c *Client) get(ctx context.Context, productID int64) (*http.Response, error) {
	url := fmt.Sprintf("%s/products/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog request: %v", fault.ErrUpstream, err)
	}
	return resp, nil
}
