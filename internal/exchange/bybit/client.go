package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// DemoBaseURL is the paper trading endpoint
const DemoBaseURL = "https://api-demo.bybit.com"

// Client wraps the Bybit API client for market data requests
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
	demo       bool
	retry      RetryConfig
}

// Config holds the configuration for the Bybit client
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool   // Demo trading environment
	Category  string // "spot", "linear", "inverse"
	BaseURL   string // overrides the environment endpoint when set
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		switch {
		case config.Demo:
			baseURL = DemoBaseURL
		case config.Testnet:
			baseURL = bybit_api.TESTNET
		default:
			baseURL = bybit_api.MAINNET
		}
	}

	category := config.Category
	if category == "" {
		category = "linear"
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	return &Client{
		httpClient: httpClient,
		category:   category,
		testnet:    config.Testnet,
		demo:       config.Demo,
		retry:      DefaultRetryConfig(),
	}
}

// WithRetryConfig replaces the retry policy used for market data calls
func (c *Client) WithRetryConfig(cfg RetryConfig) *Client {
	c.retry = cfg
	return c
}

// Category returns the product category klines are requested for
func (c *Client) Category() string {
	return c.category
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	switch {
	case c.demo:
		return "demo"
	case c.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}
