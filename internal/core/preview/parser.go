package preview

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// metaTags holds the candidate values collected from one extraction tier.
type metaTags struct {
	Title       string
	Description string
	Image       string
}

// faviconLinks holds the first non-empty href seen per rel kind.
type faviconLinks struct {
	Icon         string
	ShortcutIcon string
	AppleTouch   string
}

// ParseMetadata extracts title, description, image, and favicon from htmlText.
// It is best-effort and never fails: malformed or empty input degrades to a
// partial result with fields left empty. rawURL is the page the HTML was
// fetched from and is used to resolve relative references.
func ParseMetadata(htmlText, rawURL string) *LinkMetadata {
	meta := &LinkMetadata{
		URL:    rawURL,
		Domain: ExtractDomain(rawURL),
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		base = nil
	}

	og, twitter, std, icons := collectCandidates(htmlText)

	// Merge per field with strict priority: Open Graph, then Twitter Card,
	// then standard meta tags.
	meta.Title = coalesce(og.Title, twitter.Title, std.Title)
	meta.Description = coalesce(og.Description, twitter.Description, std.Description)

	if image := coalesce(og.Image, twitter.Image); image != "" {
		meta.Image = resolveReference(base, image)
	}

	meta.Favicon = resolveFavicon(base, icons)

	return meta
}

// collectCandidates walks the document once and gathers all three candidate
// tiers plus favicon link hrefs. The html parser tolerates unclosed tags,
// invalid nesting, and empty input, so the parse error path is unreachable in
// practice; it still degrades to empty candidates.
func collectCandidates(htmlText string) (og, twitter, std metaTags, icons faviconLinks) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return og, twitter, std, icons
	}

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if std.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					std.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				applyMetaNode(n, &og, &twitter, &std)
			case "link":
				applyLinkNode(n, &icons)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return og, twitter, std, icons
}

func applyMetaNode(n *html.Node, og, twitter, std *metaTags) {
	var property, name, content string

	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "property":
			property = strings.ToLower(attr.Val)
		case "name":
			name = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}

	if content == "" {
		return
	}

	switch property {
	case "og:title":
		setIfEmpty(&og.Title, content)
	case "og:description":
		setIfEmpty(&og.Description, content)
	case "og:image":
		setIfEmpty(&og.Image, content)
	}

	switch name {
	case "twitter:title":
		setIfEmpty(&twitter.Title, content)
	case "twitter:description":
		setIfEmpty(&twitter.Description, content)
	case "twitter:image":
		setIfEmpty(&twitter.Image, content)
	case "description":
		setIfEmpty(&std.Description, content)
	}
}

func applyLinkNode(n *html.Node, icons *faviconLinks) {
	var rel, href string

	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "rel":
			rel = strings.ToLower(strings.TrimSpace(attr.Val))
		case "href":
			href = strings.TrimSpace(attr.Val)
		}
	}

	if href == "" {
		return
	}

	switch rel {
	case "icon":
		setIfEmpty(&icons.Icon, href)
	case "shortcut icon":
		setIfEmpty(&icons.ShortcutIcon, href)
	case "apple-touch-icon":
		setIfEmpty(&icons.AppleTouch, href)
	}
}

// resolveFavicon picks the favicon by rel preference and falls back to
// /favicon.ico at the page's root.
func resolveFavicon(base *url.URL, icons faviconLinks) string {
	if href := coalesce(icons.Icon, icons.ShortcutIcon, icons.AppleTouch); href != "" {
		return resolveReference(base, href)
	}

	if base != nil && base.Scheme != "" && base.Host != "" {
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}

	return ""
}

// resolveReference makes ref absolute against base. Absolute http(s)
// references pass through unchanged; protocol-relative references adopt the
// base scheme; everything else resolves per RFC 3986.
func resolveReference(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	if parsed.Scheme == schemeHTTP || parsed.Scheme == schemeHTTPS {
		return ref
	}

	if base == nil {
		return ref
	}

	return base.ResolveReference(parsed).String()
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
