package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"faqbot/internal/cache"
	"faqbot/internal/domain/entity"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	siteResultConfidence  = 0.6
	siteGenericConfidence = 0.3
	maxPageBytes          = 2 << 20
	maxSnippet            = 500
	maxQuoted             = 300
	topResults            = 3
	fetchConcurrency      = 3
)

var siteTerms = []string{"nie", "mysuru", "engineering", "college", "admission", "placement"}

type siteResult struct {
	URL     string
	Title   string
	Content string
	Score   float64
}

// pageHit is what the cache keeps per (section url, query); a nil result
// means the page was fetched but was not relevant.
type pageHit struct {
	result *siteResult
}

// SiteFallback searches a fixed set of sections on the college website for
// pages mentioning the query words.
type SiteFallback struct {
	baseURL  string
	sections []string
	client   *http.Client
	cache    *cache.LRU[pageHit]
	logger   zerolog.Logger
}

func NewSiteFallback(baseURL string, sections []string, timeout, cacheTTL time.Duration, logger zerolog.Logger) *SiteFallback {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SiteFallback{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sections: sections,
		client:   &http.Client{Timeout: timeout},
		cache:    cache.NewLRU[pageHit](256, cacheTTL),
		logger:   logger.With().Str("component", "site_fallback").Logger(),
	}
}

// Answer returns a response quoting the most relevant page at 0.6, or the
// generic pointer to the website at 0.3 when nothing matched. It fails with
// ErrTransientFallback only when every section fetch failed.
func (s *SiteFallback) Answer(ctx context.Context, query string) (string, float64, error) {
	results, err := s.search(ctx, query)
	if err != nil {
		return "", 0, err
	}
	if len(results) == 0 {
		s.logger.Info().Str("query", query).Msg("no relevant pages on website")
		return s.genericMessage(query), siteGenericConfidence, nil
	}
	s.logger.Info().Str("query", query).Int("results", len(results)).Msg("website fallback matched")
	return composeResponse(query, results[0]), siteResultConfidence, nil
}

func (s *SiteFallback) search(ctx context.Context, query string) ([]siteResult, error) {
	if len(s.sections) == 0 {
		return nil, nil
	}
	found := make([]*siteResult, len(s.sections))
	var failures atomic.Int32

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, section := range s.sections {
		g.Go(func() error {
			pageURL, err := url.JoinPath(s.baseURL, section)
			if err != nil {
				failures.Add(1)
				return nil
			}
			key := pageURL + "|" + query
			if hit, ok := s.cache.Get(key); ok {
				found[i] = hit.result
				return nil
			}
			res, err := s.fetch(ctx, pageURL, query)
			if err != nil {
				s.logger.Warn().Err(err).Str("url", pageURL).Msg("section fetch failed")
				failures.Add(1)
				return nil
			}
			s.cache.Set(key, pageHit{result: res})
			found[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if int(failures.Load()) == len(s.sections) {
		return nil, fmt.Errorf("%w: all %d website sections failed", entity.ErrTransientFallback, len(s.sections))
	}

	var results []siteResult
	for _, r := range found {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topResults {
		results = results[:topResults]
	}
	return results, nil
}

func (s *SiteFallback) fetch(ctx context.Context, pageURL, query string) (*siteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", pageURL, resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	title, content := extractPage(doc)
	if content == "" || !isRelevant(content, query) {
		return nil, nil
	}
	if title == "" {
		title = pageURL
	}
	return &siteResult{
		URL:     pageURL,
		Title:   title,
		Content: truncateRunes(content, maxSnippet),
		Score:   relevance(content, query),
	}, nil
}

func (s *SiteFallback) genericMessage(query string) string {
	return fmt.Sprintf("I couldn't find specific information about %q in our knowledge base or on the NIE website.\n\n"+
		"Here are some suggestions:\n"+
		"- Check the official NIE website: %s\n"+
		"- Contact NIE directly for the most current information\n"+
		"- Try rephrasing your question with more specific terms\n"+
		"- Ask about admissions, placements, hostels, or specific branches\n\n"+
		"Is there anything else I can help you with about NIE?", query, s.baseURL)
}

func composeResponse(query string, best siteResult) string {
	q := strings.ToLower(query)
	quoted := truncateRunes(best.Content, maxQuoted)
	switch {
	case containsWord(q, "admission", "cutoff", "rank", "eligibility"):
		return fmt.Sprintf("Based on the latest information from NIE's official website, here's what I found:\n\n%s...\n\nFor the most current and detailed information, please visit: %s", quoted, best.URL)
	case containsWord(q, "placement", "package", "job", "career"):
		return fmt.Sprintf("Here's the latest placement information from NIE:\n\n%s...\n\nFor detailed placement statistics, visit: %s", quoted, best.URL)
	case containsWord(q, "hostel", "accommodation", "room", "facility"):
		return fmt.Sprintf("Here's information about NIE's facilities:\n\n%s...\n\nFor complete details, check: %s", quoted, best.URL)
	default:
		return fmt.Sprintf("I found some relevant information from NIE's website:\n\n%s...\n\nFor more details, visit: %s", quoted, best.URL)
	}
}

// extractPage returns the page title and the text of the first main,
// article or section element, or the body text when none exists.
func extractPage(doc *html.Node) (string, string) {
	title := ""
	if t := findFirst(doc, "title"); t != nil {
		title = collapse(textOf(t, nil))
	}
	var main string
	for _, tag := range []string{"main", "article", "section"} {
		if n := findFirst(doc, tag); n != nil {
			main = textOf(n, map[string]bool{"script": true, "style": true})
			break
		}
	}
	if strings.TrimSpace(main) == "" {
		if body := findFirst(doc, "body"); body != nil {
			main = textOf(body, map[string]bool{"script": true, "style": true, "nav": true, "header": true, "footer": true})
		}
	}
	return title, collapse(title + " " + main)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node, skip map[string]bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func isRelevant(content, query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return false
	}
	return float64(countMatches(strings.ToLower(content), words)) >= float64(len(words))*0.5
}

func relevance(content, query string) float64 {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0
	}
	lc := strings.ToLower(content)
	score := float64(countMatches(lc, words)) / float64(len(words))
	score += 0.1 * float64(countMatches(lc, siteTerms))

	head := truncateRunes(lc, 100)
	for _, w := range words {
		if strings.Contains(head, w) {
			score += 0.2
			break
		}
	}
	return min(score, 1.0)
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func containsWord(s string, words ...string) bool {
	return countMatches(s, words) > 0
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
