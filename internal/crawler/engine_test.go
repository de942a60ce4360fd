package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func linkList(urls ...string) string {
	out := ""
	for _, u := range urls {
		out += fmt.Sprintf(`<a href="%s">link</a>`, u)
	}
	return out
}

func sitePage(title, body string) string {
	return fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

func newTestEngine(t *testing.T, seed string, fetcher Fetcher) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	sink, err := NewFileSystemSink(root, false, zap.NewNop())
	require.NoError(t, err)
	cfg := Config{SeedURL: seed, MaxPages: -1, OutputDir: root}
	engine := NewEngine(cfg, fetcher, sink, nil, zap.NewNop())
	return engine, root
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestEngineCrawlsWholeSite(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	fetcher := &stubFetcher{pages: map[string]Page{
		seed: htmlPage(seed, sitePage("Home", linkList("/product/widget", "/about"))),
		"https://ex.com/product/widget": htmlPage("https://ex.com/product/widget",
			sitePage("Widget", linkList("/", "/about"))),
		"https://ex.com/about": htmlPage("https://ex.com/about", sitePage("About", linkList("/"))),
	}}
	engine, root := newTestEngine(t, seed, fetcher)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.PagesProcessed)
	require.Equal(t, 1, summary.Products)
	require.Equal(t, 0, summary.Categories)
	require.Equal(t, 2, summary.ContentPages)
	require.False(t, summary.Interrupted)
	require.NotEmpty(t, summary.RunID)

	var hierarchy map[string]HierarchyNode
	readJSON(t, filepath.Join(root, "site_hierarchy.json"), &hierarchy)
	require.Len(t, hierarchy, 3)

	// The seed was scraped first, so pages linking back to it record it as a
	// child; the seed saw its own links before their targets existed.
	require.Empty(t, hierarchy["https://ex.com"].Children)
	require.Equal(t, []string{"https://ex.com"}, hierarchy["https://ex.com/product/widget"].Children)
	require.Equal(t, []string{"https://ex.com"}, hierarchy["https://ex.com/about"].Children)

	var summaryFile Summary
	readJSON(t, filepath.Join(root, "crawl_summary.json"), &summaryFile)
	require.Equal(t, summary.RunID, summaryFile.RunID)
}

func TestEnginePartitionProperty(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	fetcher := &stubFetcher{pages: map[string]Page{
		seed: htmlPage(seed, sitePage("Home",
			linkList("/product/a", "/category/b", "/about", "/shop"))),
		"https://ex.com/product/a":  htmlPage("https://ex.com/product/a", sitePage("A", "")),
		"https://ex.com/category/b": htmlPage("https://ex.com/category/b", sitePage("B", "")),
		"https://ex.com/about":      htmlPage("https://ex.com/about", sitePage("About", "")),
		"https://ex.com/shop":       htmlPage("https://ex.com/shop", sitePage("Shop", "")),
	}}
	engine, root := newTestEngine(t, seed, fetcher)

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	var hierarchy map[string]HierarchyNode
	var listings Listings
	readJSON(t, filepath.Join(root, "site_hierarchy.json"), &hierarchy)
	readJSON(t, filepath.Join(root, "page_listings.json"), &listings)

	counts := map[string]int{}
	for _, u := range listings.Products {
		counts[u]++
	}
	for _, u := range listings.Categories {
		counts[u]++
	}
	for _, u := range listings.Content {
		counts[u]++
	}
	require.Len(t, counts, len(hierarchy))
	for u := range hierarchy {
		require.Equal(t, 1, counts[u], "every scraped url belongs to exactly one bucket")
	}
}

func TestEngineBudget(t *testing.T) {
	t.Parallel()

	for _, budget := range []int{0, 1, 5} {
		budget := budget
		t.Run(fmt.Sprintf("budget_%d", budget), func(t *testing.T) {
			t.Parallel()

			seed := "https://ex.com"
			pages := map[string]Page{}
			// A chain long enough to exceed every budget under test.
			for i := 0; i < 10; i++ {
				u := fmt.Sprintf("https://ex.com/p%d", i)
				next := fmt.Sprintf("/p%d", i+1)
				pages[u] = htmlPage(u, sitePage(fmt.Sprintf("P%d", i), linkList(next)))
			}
			pages[seed] = htmlPage(seed, sitePage("Home", linkList("/p0")))
			fetcher := &stubFetcher{pages: pages}

			root := t.TempDir()
			sink, err := NewFileSystemSink(root, false, zap.NewNop())
			require.NoError(t, err)
			engine := NewEngine(Config{SeedURL: seed, MaxPages: budget, OutputDir: root}, fetcher, sink, nil, zap.NewNop())

			summary, err := engine.Run(context.Background())
			require.NoError(t, err)
			require.LessOrEqual(t, summary.PagesProcessed, budget)
			require.LessOrEqual(t, len(fetcher.fetched), budget)
		})
	}
}

func TestEngineDuplicateLinksCollapse(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	fetcher := &stubFetcher{pages: map[string]Page{
		seed: htmlPage(seed, sitePage("Home",
			linkList("https://ex.com/a?x=1", "https://ex.com/a#frag"))),
		"https://ex.com/a": htmlPage("https://ex.com/a", sitePage("A", "")),
	}}
	engine, _ := newTestEngine(t, seed, fetcher)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	// Both links normalize to the same key, so the page is visited once.
	require.Equal(t, 2, summary.PagesProcessed)
	require.True(t, engine.State().Visited("https://ex.com/a"))
	require.Len(t, engine.State().Hierarchy(), 2)
}

func TestEngineFailedPageSkippedAndNeverRetried(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	fetcher := &stubFetcher{pages: map[string]Page{
		seed:                htmlPage(seed, sitePage("Home", linkList("/gone", "/ok"))),
		"https://ex.com/ok": htmlPage("https://ex.com/ok", sitePage("OK", linkList("/gone"))),
	}}
	engine, root := newTestEngine(t, seed, fetcher)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	// The 404 page counts against the budget and is marked visited, but it
	// never enters the hierarchy.
	require.Equal(t, 3, summary.PagesProcessed)
	require.True(t, engine.State().Visited("https://ex.com/gone"))

	var hierarchy map[string]HierarchyNode
	readJSON(t, filepath.Join(root, "site_hierarchy.json"), &hierarchy)
	require.Len(t, hierarchy, 2)
	require.NotContains(t, hierarchy, "https://ex.com/gone")
}

func TestEngineImageFailureDoesNotFailPage(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	markup := `<html><head><title>Pics</title></head><body><img src="/broken.png" alt="x"></body></html>`
	fetcher := &stubFetcher{pages: map[string]Page{
		seed: htmlPage(seed, markup),
	}}
	engine, root := newTestEngine(t, seed, fetcher)

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	var record PageRecord
	readJSON(t, filepath.Join(root, "home", "page_info.json"), &record)
	require.Empty(t, record.Images)
	require.Equal(t, "https://ex.com", record.URL)
}

func TestEngineInterruptKeepsPartialResults(t *testing.T) {
	t.Parallel()

	seed := "https://ex.com"
	pages := map[string]Page{}
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("https://ex.com/p%d", i)
		pages[u] = htmlPage(u, sitePage(fmt.Sprintf("P%d", i), linkList(fmt.Sprintf("/p%d", i+1))))
	}
	pages[seed] = htmlPage(seed, sitePage("Home", linkList("/p0")))

	ctx, cancel := context.WithCancel(context.Background())
	fetchCount := 0
	fetcher := &stubFetcher{pages: pages, onFetch: func(string) {
		fetchCount++
		if fetchCount == 4 {
			cancel()
		}
	}}

	root := t.TempDir()
	sink, err := NewFileSystemSink(root, false, zap.NewNop())
	require.NoError(t, err)
	engine := NewEngine(Config{SeedURL: seed, MaxPages: 10, OutputDir: root}, fetcher, sink, nil, zap.NewNop())

	summary, err := engine.Run(ctx)
	require.NoError(t, err)
	require.True(t, summary.Interrupted)

	// Three pages completed before the interrupt; the summaries still cover
	// exactly those three and partition them.
	var hierarchy map[string]HierarchyNode
	var listings Listings
	readJSON(t, filepath.Join(root, "site_hierarchy.json"), &hierarchy)
	readJSON(t, filepath.Join(root, "page_listings.json"), &listings)
	require.Len(t, hierarchy, 3)
	require.Len(t, listings.Products, 0)
	require.Len(t, listings.Categories, 0)
	require.Len(t, listings.Content, 3)
	for _, u := range listings.Content {
		require.Contains(t, hierarchy, u)
	}
}
