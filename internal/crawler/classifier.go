package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is one classification predicate. Match receives the lower-cased URL
// path and the parsed document.
type Rule struct {
	Type  PageType
	Match func(path string, doc *goquery.Document) bool
}

// Classifier assigns a PageType by running an ordered rule list; the first
// matching rule wins and the fallback is PageTypeContent.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from the given rules. With no rules it
// uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// DefaultRules returns the stock WooCommerce-convention heuristics: product
// markers first, then category/shop markers.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type: PageTypeProduct,
			Match: func(path string, doc *goquery.Document) bool {
				return strings.Contains(path, "product") ||
					doc.Find("div.product").Length() > 0 ||
					doc.Find("div.woocommerce-product-gallery").Length() > 0
			},
		},
		{
			Type: PageTypeCategory,
			Match: func(path string, doc *goquery.Document) bool {
				return strings.Contains(path, "category") ||
					strings.Contains(path, "shop") ||
					doc.Find("ul.products").Length() > 0 ||
					doc.Find("div.woocommerce-products-header").Length() > 0
			},
		},
	}
}

// Classify returns the page type for a normalized URL and its parsed
// document.
func (c *Classifier) Classify(normalizedURL string, doc *goquery.Document) PageType {
	path := ""
	if u, err := url.Parse(normalizedURL); err == nil {
		path = strings.ToLower(u.Path)
	}
	for _, rule := range c.rules {
		if rule.Match(path, doc) {
			return rule.Type
		}
	}
	return PageTypeContent
}
