package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// preferredExtensions pins a stable extension for the common image types so
// the on-disk names do not depend on the platform mime registry.
var preferredExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
}

// Extractor turns one fetched page into a PageRecord: classification,
// metadata, structured data, flattened text, downloaded images, and
// same-domain links. Artifacts are written through the Sink as a side effect.
type Extractor struct {
	seedURL    string
	fetcher    Fetcher
	classifier *Classifier
	sink       Sink
	logger     *zap.Logger
}

// NewExtractor constructs an Extractor bound to a seed domain.
func NewExtractor(seedURL string, fetcher Fetcher, classifier *Classifier, sink Sink, logger *zap.Logger) *Extractor {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Extractor{
		seedURL:    seedURL,
		fetcher:    fetcher,
		classifier: classifier,
		sink:       sink,
		logger:     logger,
	}
}

// Extract fetches rawURL, parses it, and produces the page's full record.
// Any fetch or parse failure of the page itself aborts extraction; image
// failures only drop the single image.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*PageRecord, error) {
	normalized := NormalizeURL(rawURL)
	pathKey := PathKey(normalized)

	if err := e.sink.EnsurePageDir(ctx, pathKey); err != nil {
		return nil, fmt.Errorf("prepare page dir: %w", err)
	}

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if page.StatusCode != 200 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, page.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", rawURL, err)
	}

	pageType := e.classifier.Classify(normalized, doc)
	metadata := extractMetadata(doc, pageType)
	structured := extractStructuredData(doc)

	// flattenText strips script/style nodes from the document, so it must run
	// after structured-data extraction.
	text := flattenText(doc)
	textFile, err := e.sink.SaveText(ctx, pathKey, rawURL, pageType, text)
	if err != nil {
		return nil, fmt.Errorf("save text for %s: %w", rawURL, err)
	}

	images := e.extractImages(ctx, doc, base, pathKey)
	links, discovered := e.extractLinks(doc, base)

	record := PageRecord{
		URL:            normalized,
		OriginalURL:    rawURL,
		Path:           pathKey,
		Type:           pageType,
		Metadata:       metadata,
		StructuredData: structured,
		Images:         images,
		Links:          links,
		TextFile:       textFile,
		Discovered:     discovered,
	}

	if err := e.sink.SavePage(ctx, record); err != nil {
		return nil, fmt.Errorf("save page record for %s: %w", rawURL, err)
	}
	return &record, nil
}

func extractMetadata(doc *goquery.Document, pageType PageType) Metadata {
	meta := Metadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.MetaDescription = desc
	}
	if kw, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		meta.MetaKeywords = kw
	}
	meta.H1Headings = headingTexts(doc, "h1")
	meta.H2Headings = headingTexts(doc, "h2")
	meta.H3Headings = headingTexts(doc, "h3")

	if pageType == PageTypeProduct {
		meta.Product = &ProductInfo{
			Price:       firstText(doc, ".price, .woocommerce-Price-amount"),
			SKU:         firstText(doc, ".sku"),
			StockStatus: firstText(doc, ".stock"),
			Categories:  allTexts(doc, ".posted_in"),
			Tags:        allTexts(doc, ".tagged_as"),
		}
	}
	return meta
}

func headingTexts(doc *goquery.Document, tag string) []string {
	var out []string
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func allTexts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// extractStructuredData collects every JSON-LD script block that parses.
// Malformed blocks are dropped silently; the result is nil when none parse.
func extractStructuredData(doc *goquery.Document) []any {
	var out []any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		out = append(out, v)
	})
	return out
}

// flattenText joins every visible text fragment with newlines, mirroring a
// soup-style get_text walk. Script, style, and noscript subtrees are removed
// from the document first.
func flattenText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}

// extractImages downloads every referenced image. A failed image is logged
// and dropped; it never fails the page.
func (e *Extractor) extractImages(ctx context.Context, doc *goquery.Document, base *url.URL, pathKey string) []ImageRecord {
	var images []ImageRecord
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		absURL := resolveURL(base, src)
		if absURL == "" {
			return
		}
		record, err := e.downloadImage(ctx, absURL, pathKey)
		if err != nil {
			TotalImageErrors.Inc()
			e.logger.Warn("Failed to download image",
				zap.String("url", absURL),
				zap.Error(err),
			)
			return
		}
		record.AltText = s.AttrOr("alt", "")
		images = append(images, record)
		TotalImagesDownloaded.Inc()
	})
	return images
}

func (e *Extractor) downloadImage(ctx context.Context, imgURL, pathKey string) (ImageRecord, error) {
	resp, err := e.fetcher.Fetch(ctx, imgURL)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode != 200 {
		return ImageRecord{}, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Headers.Get("Content-Type")
	filename := imageFilename(imgURL, contentType)
	localPath, err := e.sink.SaveImage(ctx, pathKey, filename, resp.Body)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("save image: %w", err)
	}
	return ImageRecord{
		OriginalURL: imgURL,
		LocalPath:   localPath,
		Filename:    filepath.Base(localPath),
		ContentType: contentType,
	}, nil
}

// imageFilename derives the collision-prone sanitized name for a downloaded
// image: URL basename minus extension, reserved characters replaced, lower-
// cased, with the extension taken from the declared content type, then the
// original name, then a generic binary fallback.
func imageFilename(imgURL, contentType string) string {
	name := ""
	origExt := ""
	if u, err := url.Parse(imgURL); err == nil {
		basename := path.Base(u.Path)
		if basename != "/" && basename != "." {
			origExt = path.Ext(basename)
			name = strings.TrimSuffix(basename, origExt)
		}
	}

	ext := extensionForType(contentType)
	if ext == "" {
		ext = origExt
	}
	if ext == "" {
		ext = ".bin"
	}

	name = reservedPathChars.ReplaceAllString(name, "-")
	if name == "" {
		name = "image"
	}
	return strings.ToLower(name + ext)
}

func extensionForType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return ""
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// extractLinks collects every same-domain anchor. The discovery list keeps
// document order and repeats; deduplication happens at the frontier.
func (e *Extractor) extractLinks(doc *goquery.Document, base *url.URL) ([]LinkRecord, []string) {
	var links []LinkRecord
	var discovered []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		absURL := resolveURL(base, href)
		if absURL == "" || !SameDomain(absURL, e.seedURL) {
			return
		}
		normalized := NormalizeURL(absURL)
		links = append(links, LinkRecord{
			URL:   normalized,
			Text:  strings.TrimSpace(s.Text()),
			Title: s.AttrOr("title", ""),
		})
		discovered = append(discovered, normalized)
		TotalLinksDiscovered.Inc()
	})
	return links, discovered
}

func resolveURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
