package linkpreview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const maxPreviewBody = 512 * 1024

// HTMLFetcher scrapes Open Graph tags from the target page, falling
// back to <title> when the page carries no og: metadata.
type HTMLFetcher struct {
	client *http.Client
}

func NewHTMLFetcher(timeout time.Duration) *HTMLFetcher {
	return &HTMLFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTMLFetcher) Fetch(ctx context.Context, url string) (string, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("User-Agent", "roomchat-linkpreview/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		return "", "", "", fmt.Errorf("not an html page: %s", ct)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPreviewBody))
	if err != nil {
		return "", "", "", err
	}

	var title, description, imageURL, pageTitle string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property, content := attr(n, "property"), attr(n, "content")
				switch property {
				case "og:title":
					title = content
				case "og:description":
					description = content
				case "og:image":
					imageURL = content
				}
			case "title":
				if n.FirstChild != nil && pageTitle == "" {
					pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if title == "" {
		title = pageTitle
	}
	if title == "" && description == "" {
		return "", "", "", fmt.Errorf("no preview metadata at %s", url)
	}
	return title, description, imageURL, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
