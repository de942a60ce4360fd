package crawler

import (
	"net/http"
	"time"
)

// PageType labels a scraped page as product, category, or generic content.
type PageType string

// Page type values, in classification priority order.
const (
	PageTypeProduct  PageType = "product"
	PageTypeCategory PageType = "category"
	PageTypeContent  PageType = "content"
)

// Page is the raw result of fetching a single URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Metadata captures the descriptive fields extracted from a page's markup.
type Metadata struct {
	Title           string       `json:"title"`
	MetaDescription string       `json:"meta_description"`
	MetaKeywords    string       `json:"meta_keywords"`
	H1Headings      []string     `json:"h1_headings"`
	H2Headings      []string     `json:"h2_headings"`
	H3Headings      []string     `json:"h3_headings"`
	Product         *ProductInfo `json:"product_info,omitempty"`
}

// ProductInfo holds the product-specific fields extracted from product pages.
// Every field is best-effort and empty when the markup lacks it.
type ProductInfo struct {
	Price       string   `json:"price"`
	SKU         string   `json:"sku"`
	StockStatus string   `json:"stock_status"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
}

// ImageRecord describes one image downloaded while scraping a page.
type ImageRecord struct {
	OriginalURL string `json:"original_url"`
	LocalPath   string `json:"local_path"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	AltText     string `json:"alt_text"`
}

// LinkRecord describes one same-domain anchor found on a page. URL is the
// normalized form of the target.
type LinkRecord struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// PageRecord is the full structured result for one successfully scraped page.
// It is created once per page and never mutated afterward.
type PageRecord struct {
	URL            string        `json:"url"`
	OriginalURL    string        `json:"original_url"`
	Path           string        `json:"path"`
	Type           PageType      `json:"type"`
	Metadata       Metadata      `json:"metadata"`
	StructuredData []any         `json:"structured_data"`
	Images         []ImageRecord `json:"images"`
	Links          []LinkRecord  `json:"links"`
	TextFile       string        `json:"local_text_file"`

	// Discovered lists every same-domain link target in document order,
	// including repeats within the page. It feeds the frontier and is not
	// part of the persisted record.
	Discovered []string `json:"-"`
}

// HierarchyNode is the per-page entry in the site hierarchy graph.
type HierarchyNode struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Type     PageType `json:"type"`
	Children []string `json:"children"`
}

// Listings groups every scraped URL by page type. The three slices partition
// the set of scraped pages.
type Listings struct {
	Products   []string `json:"products"`
	Categories []string `json:"categories"`
	Content    []string `json:"content"`
}

// Summary reports the outcome of a crawl run.
type Summary struct {
	RunID          string    `json:"run_id"`
	SeedURL        string    `json:"seed_url"`
	PagesProcessed int       `json:"pages_processed"`
	Products       int       `json:"products"`
	Categories     int       `json:"categories"`
	ContentPages   int       `json:"content_pages"`
	Interrupted    bool      `json:"interrupted"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
