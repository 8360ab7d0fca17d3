package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// User agent used for robots.txt checks, identifying the scraper as a bot.
const scraperUserAgent = "AdenBot/1.0 (https://adenhq.com; web scraping tool)"

// Browser-like user agent for page requests.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	minContentLength  = 1000
	maxContentLength  = 500000
	maxExtractedLinks = 50
)

// ErrBlockedByRobots is returned when robots.txt disallows the requested path.
var ErrBlockedByRobots = errors.New("blocked by robots.txt")

// ErrBlockedAddress is returned when a URL points at a private or loopback
// address.
var ErrBlockedAddress = errors.New("access to internal/private address is blocked")

// WebScraper fetches a page and extracts its readable content.
type WebScraper struct {
	client        *http.Client
	maxLength     int
	respectRobots bool
	includeLinks  bool
	allowInternal bool
	selector      string
	outputFormat  string // "text" or "html"

	mu     sync.Mutex
	robots map[string]*robotsRules // scheme://host -> rules, nil when absent
}

// ScrapeResult is the extracted content of a page.
type ScrapeResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Length      int    `json:"length"`
	Format      string `json:"format"`
	Links       []Link `json:"links,omitempty"`
}

// Link is one hyperlink extracted from a page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

type ScrapeOption func(*WebScraper)

// WithScrapeTimeout sets the HTTP timeout for page fetches.
func WithScrapeTimeout(timeout time.Duration) ScrapeOption {
	return func(w *WebScraper) {
		w.client.Timeout = timeout
	}
}

// WithScrapeClient sets the HTTP client used for all requests.
func WithScrapeClient(client *http.Client) ScrapeOption {
	return func(w *WebScraper) {
		w.client = client
	}
}

// WithSelector targets extraction at the first element matching the CSS
// selector instead of the main-content heuristic.
func WithSelector(selector string) ScrapeOption {
	return func(w *WebScraper) {
		w.selector = selector
	}
}

// WithIncludeLinks includes up to 50 extracted links in results.
func WithIncludeLinks(include bool) ScrapeOption {
	return func(w *WebScraper) {
		w.includeLinks = include
	}
}

// WithMaxLength sets the maximum content length (1000-500000).
func WithMaxLength(length int) ScrapeOption {
	return func(w *WebScraper) {
		if length < minContentLength {
			length = minContentLength
		}
		if length > maxContentLength {
			length = maxContentLength
		}
		w.maxLength = length
	}
}

// WithAllowInternalHosts disables the private-address guard, for scraping
// hosts on an internal network.
func WithAllowInternalHosts(allow bool) ScrapeOption {
	return func(w *WebScraper) {
		w.allowInternal = allow
	}
}

// WithRespectRobots controls whether robots.txt rules are honored
// (default true).
func WithRespectRobots(respect bool) ScrapeOption {
	return func(w *WebScraper) {
		w.respectRobots = respect
	}
}

// WithOutputFormat selects "text" (default) or "html". HTML output is
// sanitized before it is returned.
func WithOutputFormat(format string) ScrapeOption {
	return func(w *WebScraper) {
		w.outputFormat = format
	}
}

// NewWebScraper creates a new web scraping tool.
func NewWebScraper(opts ...ScrapeOption) *WebScraper {
	w := &WebScraper{
		client:        &http.Client{Timeout: 30 * time.Second},
		maxLength:     50000,
		respectRobots: true,
		outputFormat:  "text",
		robots:        make(map[string]*robotsRules),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Name returns the name of the tool.
func (w *WebScraper) Name() string {
	return "Web_Scrape"
}

// Description returns the description of the tool.
func (w *WebScraper) Description() string {
	return "Scrape and extract readable content from a webpage. " +
		"Useful for reading documentation, articles and other pages. " +
		"Input should be a URL."
}

// Call scrapes the URL given as input and returns the result as JSON.
func (w *WebScraper) Call(ctx context.Context, input string) (string, error) {
	result, err := w.Scrape(ctx, strings.TrimSpace(input))
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

// Scrape fetches the page and extracts its content.
func (w *WebScraper) Scrape(ctx context.Context, rawURL string) (*ScrapeResult, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported protocol %q, only http/https are allowed", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid URL: no hostname found")
	}

	if !w.allowInternal && isInternalHost(parsed.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedAddress, parsed.Hostname())
	}

	if w.respectRobots {
		if err := w.checkRobots(ctx, parsed); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: failed to fetch URL", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml+xml") {
		return nil, fmt.Errorf("skipping non-HTML content (%s)", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return w.extract(doc, resp.Request.URL.String())
}

func (w *WebScraper) extract(doc *goquery.Document, resolvedURL string) (*ScrapeResult, error) {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	// Strip noise before content targeting.
	doc.Find("script, style, nav, footer, header, aside, noscript, iframe").Remove()

	var target *goquery.Selection
	if w.selector != "" {
		target = doc.Find(w.selector).First()
		if target.Length() == 0 {
			return nil, fmt.Errorf("no elements found matching selector: %s", w.selector)
		}
	} else {
		target = mainContent(doc)
	}

	var content string
	if strings.EqualFold(w.outputFormat, "html") {
		raw, err := goquery.OuterHtml(target)
		if err != nil {
			return nil, fmt.Errorf("failed to render HTML: %w", err)
		}
		content = bluemonday.UGCPolicy().Sanitize(raw)
	} else {
		content = target.Text()
	}

	content = strings.Join(strings.Fields(content), " ")
	if len(content) > w.maxLength {
		content = content[:w.maxLength] + "..."
	}

	result := &ScrapeResult{
		URL:         resolvedURL,
		Title:       title,
		Description: description,
		Content:     content,
		Length:      len(content),
		Format:      strings.ToLower(w.outputFormat),
	}

	if w.includeLinks {
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			text := strings.TrimSpace(s.Text())
			if text != "" && href != "" {
				result.Links = append(result.Links, Link{Text: text, Href: href})
			}
			return len(result.Links) < maxExtractedLinks
		})
	}

	return result, nil
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{
		"article", "main", `[role="main"]`,
		".content", ".post", ".entry",
		"body",
	} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

// isInternalHost reports whether the hostname is, or resolves to, a private,
// loopback or link-local address.
func isInternalHost(hostname string) bool {
	if addr, err := netip.ParseAddr(hostname); err == nil {
		return isInternalAddr(addr)
	}

	switch strings.ToLower(strings.Trim(hostname, ".")) {
	case "localhost", "localhost.localdomain", "local":
		return true
	}

	addrs, err := net.LookupHost(hostname)
	if err != nil {
		// Unresolvable hosts fail naturally at fetch time.
		return false
	}
	for _, a := range addrs {
		if addr, err := netip.ParseAddr(a); err == nil && isInternalAddr(addr) {
			return true
		}
	}
	return false
}

func isInternalAddr(addr netip.Addr) bool {
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast()
}

// robotsRules holds the allow/disallow rules that apply to this scraper.
type robotsRules struct {
	rules []robotsRule
}

type robotsRule struct {
	allow bool
	path  string
}

func (w *WebScraper) checkRobots(ctx context.Context, pageURL *url.URL) error {
	base := pageURL.Scheme + "://" + pageURL.Host

	w.mu.Lock()
	rules, cached := w.robots[base]
	w.mu.Unlock()

	if !cached {
		rules = w.fetchRobots(ctx, base)
		w.mu.Lock()
		w.robots[base] = rules
		w.mu.Unlock()
	}

	path := pageURL.Path
	if path == "" {
		path = "/"
	}

	// A missing or unreadable robots.txt allows everything.
	if rules != nil && !rules.allowed(path) {
		return fmt.Errorf("%w: %s", ErrBlockedByRobots, path)
	}
	return nil
}

func (w *WebScraper) fetchRobots(ctx context.Context, base string) *robotsRules {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}

	return parseRobots(string(body))
}

// parseRobots extracts the rule groups that apply to either this scraper's
// user agent or the wildcard agent.
func parseRobots(content string) *robotsRules {
	agentToken := strings.ToLower(strings.SplitN(scraperUserAgent, "/", 2)[0])

	rules := &robotsRules{}
	applies := false

	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			agent := strings.ToLower(value)
			applies = agent == "*" || strings.Contains(agentToken, agent) || strings.Contains(agent, agentToken)
		case "allow":
			if applies && value != "" {
				rules.rules = append(rules.rules, robotsRule{allow: true, path: value})
			}
		case "disallow":
			if applies && value != "" {
				rules.rules = append(rules.rules, robotsRule{allow: false, path: value})
			}
		}
	}

	return rules
}

// allowed applies longest-match-wins semantics, with Allow winning ties.
func (r *robotsRules) allowed(path string) bool {
	allowed := true
	longest := -1

	for _, rule := range r.rules {
		if !strings.HasPrefix(path, rule.path) {
			continue
		}
		if len(rule.path) > longest || (len(rule.path) == longest && rule.allow) {
			longest = len(rule.path)
			allowed = rule.allow
		}
	}

	return allowed
}
