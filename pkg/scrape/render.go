package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer loads a page in a headless browser so client-rendered content
// becomes readable, returning the settled outer HTML. Implementations
// must release the browser session on every exit path.
type Renderer interface {
	RenderHTML(ctx context.Context, pageURL string, waitSelectors []string, opts Options) (string, *Error)
}

// ChromeRenderer drives a headless Chrome via chromedp. Each call gets
// its own allocator and tab context; cancelling them tears the browser
// down even when navigation fails mid-flight.
type ChromeRenderer struct{}

func (ChromeRenderer) RenderHTML(ctx context.Context, pageURL string, waitSelectors []string, opts Options) (string, *Error) {
	opts = opts.WithDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
	)
	if proxy := opts.proxy(); proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxy))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	// The rendered attempt gets double the static timeout: browser
	// startup plus navigation plus the settle grace period.
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 2*opts.Timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		waitAnySelector(waitSelectors, RenderGrace),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", NetworkError(fmt.Sprintf("rendered fetch of %s: %v", pageURL, err))
	}
	return html, nil
}

// waitAnySelector resolves as soon as any of the selectors matches, or
// after the grace timeout, whichever comes first. Expiry is not an error:
// the caller reads whatever settled.
func waitAnySelector(selectors []string, grace time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if len(selectors) == 0 {
			return nil
		}
		sels, err := json.Marshal(selectors)
		if err != nil {
			return err
		}
		expr := fmt.Sprintf(`%s.some(function(s){ return document.querySelector(s) !== null; })`, sels)

		deadline := time.Now().Add(grace)
		for time.Now().Before(deadline) {
			var found bool
			if err := chromedp.Evaluate(expr, &found).Do(ctx); err != nil {
				return err
			}
			if found {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(250 * time.Millisecond):
			}
		}
		return nil
	})
}
