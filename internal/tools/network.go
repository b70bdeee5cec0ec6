package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const (
	fetchTimeout     = 30 * time.Second
	fetchMaxChars    = 50000
	networkUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// NetworkCapability covers outbound web access: fetching a page as clean
// text, searching, and opening a URL in a headless browser.
type NetworkCapability struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	search    *duckduckgo.Tool
}

func NewNetwork() *NetworkCapability {
	// A nil search client degrades the search action to a capability
	// failure instead of blocking startup.
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		ddg = nil
	}
	return &NetworkCapability{
		client:    &http.Client{Timeout: fetchTimeout},
		sanitizer: bluemonday.StrictPolicy(),
		search:    ddg,
	}
}

func (n *NetworkCapability) Name() string { return "network" }

func (n *NetworkCapability) Actions() []string {
	return []string{"fetch", "search", "open_url"}
}

func (n *NetworkCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	switch action {
	case "fetch":
		return n.fetch(ctx, params.String("url"), params.Int("max_chars", fetchMaxChars))
	case "search":
		return n.searchWeb(ctx, params.String("query"))
	case "open_url":
		return n.openURL(ctx, params.String("url"))
	default:
		return Fail("Unsupported tool/action: network/%s", action)
	}
}

func (n *NetworkCapability) fetch(ctx context.Context, rawURL string, maxChars int) Result {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Fail("URL must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Fail("Failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", networkUserAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return Fail("Failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fail("Failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Fail("Failed to parse URL: %v", err)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return Fail("Failed to parse article: %v", err)
	}

	// Strip any markup readability left behind.
	content := n.sanitizer.Sanitize(article.TextContent)
	truncated := len(content) > maxChars
	if truncated {
		content = content[:maxChars]
	}

	return OK(map[string]any{
		"url":       rawURL,
		"title":     article.Title,
		"excerpt":   article.Excerpt,
		"content":   content,
		"truncated": truncated,
	})
}

func (n *NetworkCapability) searchWeb(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Fail("query is required.")
	}
	if n.search == nil {
		return Fail("Search backend unavailable.")
	}

	res, err := n.search.Call(ctx, query)
	if err != nil {
		return Fail("Search failed: %v", err)
	}
	return OK(map[string]any{"query": query, "results": res})
}

// openURL renders the page in a headless browser and reports its title.
func (n *NetworkCapability) openURL(ctx context.Context, rawURL string) Result {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Fail("URL must start with http:// or https://")
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, fetchTimeout)
	defer cancelTimeout()

	var title string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.Title(&title),
	)
	if err != nil {
		return Fail("Failed to open URL: %v", err)
	}
	return OK(map[string]any{
		"url":     rawURL,
		"title":   title,
		"message": fmt.Sprintf("Opened URL '%s'.", rawURL),
	})
}
