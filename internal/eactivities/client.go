// Package eactivities talks to the Imperial College Union eActivities API,
// which is the source of truth for club membership purchases.
package eactivities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrTeamProductNotFound means the products report has no entry whose name
// contains both "team" and "membership".
var ErrTeamProductNotFound = errors.New("eactivities: team membership product not found")

// Member mirrors one entry of the reports/members payload.
type Member struct {
	FirstName  string `json:"FirstName"`
	Surname    string `json:"Surname"`
	CID        string `json:"CID"`
	Email      string `json:"Email"`
	Login      string `json:"Login"`
	OrderNo    int32  `json:"OrderNo"`
	MemberType string `json:"MemberType"`
}

// Product mirrors one entry of the reports/products payload.
type Product struct {
	ID   int64  `json:"ID"`
	Name string `json:"Name"`
}

// Sale mirrors one entry of the products/{id}/sales payload.
type Sale struct {
	Customer Customer `json:"Customer"`
}

// Customer is the purchaser block inside a sale.
type Customer struct {
	FirstName string `json:"FirstName"`
	Surname   string `json:"Surname"`
	CID       string `json:"CID"`
	Email     string `json:"Email"`
	Login     string `json:"Login"`
}

// Client calls the eActivities API with the club's API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client rooted at baseURL (the club's CSP prefix,
// without trailing slash) authenticating with apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Members fetches the full membership report.
func (c *Client) Members(ctx context.Context) ([]Member, error) {
	var out []Member
	if err := c.get(ctx, "/reports/members", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products fetches the products report.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.get(ctx, "/reports/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductSales fetches the sales of one product.
func (c *Client) ProductSales(ctx context.Context, productID int64) ([]Sale, error) {
	var out []Sale
	if err := c.get(ctx, fmt.Sprintf("/products/%d/sales", productID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamProductID scans the products report for the team membership product.
// Matching is by name: it must contain both "team" and "membership",
// case-insensitively.
func TeamProductID(products []Product) (int64, error) {
	for _, p := range products {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, "team") && strings.Contains(name, "membership") {
			return p.ID, nil
		}
	}
	return 0, ErrTeamProductNotFound
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("eactivities: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("eactivities: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("eactivities: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("eactivities: GET %s: decode: %w", path, err)
	}
	return nil
}
