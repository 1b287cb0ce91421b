package librus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/ports"
)

const userAgent = "czujka-librus/1.0"

// Client is an authenticated scraping session against the Synergia portal.
// It keeps the session cookie in a jar; Authenticate must succeed before
// any listing call.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Portal = (*Client)(nil)

// NewClient builds a portal session from configuration.
func NewClient(cfg config.LibrusConfig, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logger,
	}
}

// Authenticate posts the login form and verifies the portal accepted the
// credentials. Failure here is fatal for the whole run.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("login", c.username)
	form.Set("passwd", c.password)

	doc, err := c.postForm(ctx, "/loguj", form)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}

	if doc.Find(".error, #page-error").Length() > 0 {
		return fmt.Errorf("portal rejected credentials for %s", c.username)
	}

	c.logger.Info("authentication successful")
	return nil
}

func (c *Client) fetchDocument(ctx context.Context, path string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal returned %s for %s", resp.Status, path)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal returned %s for %s", resp.Status, path)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
