package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// HeadlessFetcher extracts posting links from pages that only render them
// client side.
type HeadlessFetcher interface {
	Links(ctx context.Context, pageURL, linkSelector string) ([]string, error)
}

// ChromeFetcher drives a headless Chrome instance.
type ChromeFetcher struct {
	timeout time.Duration
}

func NewChromeFetcher() *ChromeFetcher {
	return &ChromeFetcher{timeout: 25 * time.Second}
}

func (f *ChromeFetcher) Links(ctx context.Context, pageURL, linkSelector string) ([]string, error) {
	if f == nil {
		return nil, fmt.Errorf("nil fetcher")
	}
	if strings.TrimSpace(linkSelector) == "" {
		linkSelector = "a[href]"
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, f.timeout)
	defer reqCancel()

	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%q))
		.map(a => a.getAttribute('href'))
		.filter(h => h)`, linkSelector)

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(script, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(pageURL, "/")
	seen := map[string]struct{}{}
	out := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if strings.HasPrefix(h, "/") {
			h = "https://" + hostFromBaseURL(pageURL) + h
		} else if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			h = base + "/" + h
		}
		h = normalizeURL(h)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no links found (headless)")
	}
	return out, nil
}
