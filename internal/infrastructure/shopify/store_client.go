package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopify-workspace-connector/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// APIVersion is the Admin REST API version every call is pinned to
const APIVersion = "2024-01"

const (
	defaultRetries = 3
	defaultTimeout = 15 * time.Second
)

// APIError is a non-2xx answer from the Shopify Admin API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return domain.ErrUpstream
}

// CallObserver is notified after every outbound Shopify call
type CallObserver interface {
	ObserveShopifyCall(operation string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveShopifyCall(string, error) {}

// NewHTTPClient returns the http.Client used for outbound Shopify calls
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// StoreClient reads one shop's data through the Admin REST API
type StoreClient struct {
	client   *goshopify.Client
	shop     string
	observer CallObserver
}

// StoreOption configures a StoreClient
type StoreOption func(*storeOptions)

type storeOptions struct {
	httpClient *http.Client
	retries    int
	observer   CallObserver
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) StoreOption {
	return func(o *storeOptions) { o.httpClient = c }
}

// WithRetries sets how often go-shopify retries 429 and 503 answers
func WithRetries(n int) StoreOption {
	return func(o *storeOptions) { o.retries = n }
}

// WithObserver reports every call to obs
func WithObserver(obs CallObserver) StoreOption {
	return func(o *storeOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func buildOptions(opts []StoreOption) storeOptions {
	o := storeOptions{retries: defaultRetries, observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient()
	}
	return o
}

func newGoShopifyClient(shopDomain, accessToken string, o storeOptions, retry bool) (*goshopify.Client, error) {
	goOpts := []goshopify.Option{
		goshopify.WithVersion(APIVersion),
		goshopify.WithHTTPClient(o.httpClient),
	}
	if retry && o.retries > 0 {
		goOpts = append(goOpts, goshopify.WithRetry(o.retries))
	}
	c, err := goshopify.NewClient(goshopify.App{}, shopDomain, accessToken, goOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

// NewStoreClient creates a client for shopDomain authenticated with a plaintext access token.
// go-shopify sends the token as X-Shopify-Access-Token on every request.
func NewStoreClient(shopDomain, accessToken string, opts ...StoreOption) (*StoreClient, error) {
	o := buildOptions(opts)
	c, err := newGoShopifyClient(shopDomain, accessToken, o, true)
	if err != nil {
		return nil, err
	}
	return &StoreClient{client: c, shop: shopDomain, observer: o.observer}, nil
}

// PageOptions selects a page of a cursor-paginated listing. An empty Cursor means the first page.
type PageOptions struct {
	Limit  int
	Cursor string
}

type pageQuery struct {
	Limit    int    `url:"limit,omitempty"`
	PageInfo string `url:"page_info,omitempty"`
}

// Product is the subset of a product used by the sync worker
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Variant struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	Title           string `json:"title"`
	SKU             string `json:"sku"`
	Price           string `json:"price"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

// ProductPage is one page of products; NextCursor is empty on the last page
type ProductPage struct {
	Products   []Product
	NextCursor string
}

type InventoryLevel struct {
	InventoryItemID int64     `json:"inventory_item_id"`
	LocationID      int64     `json:"location_id"`
	Available       *int      `json:"available"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Active   bool   `json:"active"`
}

// Order is the subset of an order used by the sync worker
type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Currency          string     `json:"currency"`
	TotalPrice        string     `json:"total_price"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus *string    `json:"fulfillment_status"`
	LineItems         []LineItem `json:"line_items"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type LineItem struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderOptions filters an order listing. Status defaults to "any".
type OrderOptions struct {
	Status string
	Limit  int
	Cursor string
}

type orderQuery struct {
	Status   string `url:"status,omitempty"`
	Limit    int    `url:"limit,omitempty"`
	PageInfo string `url:"page_info,omitempty"`
}

// OrderPage is one page of orders; NextCursor is empty on the last page
type OrderPage struct {
	Orders     []Order
	NextCursor string
}

// GetShop reads the shop resource
func (c *StoreClient) GetShop(ctx context.Context) (*domain.ShopInfo, error) {
	var resource struct {
		Shop domain.ShopInfo `json:"shop"`
	}
	if err := c.do(ctx, "shop.get", func() error {
		return c.client.Get(ctx, "shop.json", &resource, nil)
	}); err != nil {
		return nil, err
	}
	return &resource.Shop, nil
}

// GetProducts returns one page of products
func (c *StoreClient) GetProducts(ctx context.Context, opts PageOptions) (*ProductPage, error) {
	var resource struct {
		Products []Product `json:"products"`
	}
	var pagination *goshopify.Pagination
	err := c.do(ctx, "products.list", func() error {
		var err error
		pagination, err = c.client.ListWithPagination(ctx, "products.json", &resource, pageQuery{Limit: opts.Limit, PageInfo: opts.Cursor})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: resource.Products, NextCursor: nextCursor(pagination)}, nil
}

// GetInventoryLevels returns the inventory levels at the given locations
func (c *StoreClient) GetInventoryLevels(ctx context.Context, locationIDs []int64) ([]InventoryLevel, error) {
	ids := make([]string, len(locationIDs))
	for i, id := range locationIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	query := struct {
		LocationIDs string `url:"location_ids,omitempty"`
	}{LocationIDs: strings.Join(ids, ",")}

	var resource struct {
		InventoryLevels []InventoryLevel `json:"inventory_levels"`
	}
	if err := c.do(ctx, "inventory_levels.list", func() error {
		return c.client.Get(ctx, "inventory_levels.json", &resource, query)
	}); err != nil {
		return nil, err
	}
	return resource.InventoryLevels, nil
}

// GetLocations returns all locations of the shop
func (c *StoreClient) GetLocations(ctx context.Context) ([]Location, error) {
	var resource struct {
		Locations []Location `json:"locations"`
	}
	if err := c.do(ctx, "locations.list", func() error {
		return c.client.Get(ctx, "locations.json", &resource, nil)
	}); err != nil {
		return nil, err
	}
	return resource.Locations, nil
}

// GetOrders returns one page of orders
func (c *StoreClient) GetOrders(ctx context.Context, opts OrderOptions) (*OrderPage, error) {
	query := orderQuery{Limit: opts.Limit, PageInfo: opts.Cursor}
	// Shopify rejects filters alongside page_info
	if opts.Cursor == "" {
		query.Status = opts.Status
		if query.Status == "" {
			query.Status = "any"
		}
	}

	var resource struct {
		Orders []Order `json:"orders"`
	}
	var pagination *goshopify.Pagination
	err := c.do(ctx, "orders.list", func() error {
		var err error
		pagination, err = c.client.ListWithPagination(ctx, "orders.json", &resource, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: resource.Orders, NextCursor: nextCursor(pagination)}, nil
}

// Request performs an arbitrary call against /admin/api/{version}/{endpoint}.
// body is JSON-encoded when non-nil; out receives the decoded response when non-nil.
func (c *StoreClient) Request(ctx context.Context, method, endpoint string, body, out any) error {
	endpoint = strings.TrimPrefix(endpoint, "/")
	return c.do(ctx, "request", func() error {
		return c.client.CreateAndDo(ctx, method, endpoint, body, nil, out)
	})
}

func (c *StoreClient) do(ctx context.Context, operation string, call func() error) error {
	err := call()
	if err != nil {
		err = translateError(err)
	}
	c.observer.ObserveShopifyCall(operation, err)
	if err != nil {
		return fmt.Errorf("failed to %s for %s: %w", operation, c.shop, err)
	}
	return nil
}

func nextCursor(p *goshopify.Pagination) string {
	if p == nil || p.NextPageOptions == nil {
		return ""
	}
	return p.NextPageOptions.PageInfo
}

// translateError turns go-shopify response errors into *APIError
func translateError(err error) error {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{StatusCode: rateErr.Status, Message: rateErr.Message}
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return &APIError{StatusCode: respErr.Status, Message: respErr.Message}
	}
	var respErrPtr *goshopify.ResponseError
	if errors.As(err, &respErrPtr) {
		return &APIError{StatusCode: respErrPtr.Status, Message: respErrPtr.Message}
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
}
