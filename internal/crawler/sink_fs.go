package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Filenames written at the output root and inside each page directory.
const (
	hierarchyFile = "site_hierarchy.json"
	listingsFile  = "page_listings.json"
	summaryFile   = "crawl_summary.json"
	pageInfoFile  = "page_info.json"
	textDirName   = "text"
	imageDirName  = "images"
	textFileName  = "content.txt"
)

// FileSystemSink persists crawl artifacts under an output root:
//
//	<root>/<pathKey>/page_info.json
//	<root>/<pathKey>/text/content.txt
//	<root>/<pathKey>/images/<filename>
//	<root>/site_hierarchy.json, page_listings.json, crawl_summary.json
type FileSystemSink struct {
	root         string
	disambiguate bool
	logger       *zap.Logger
}

// NewFileSystemSink returns a sink rooted at dir, creating it if needed.
// Failure here is fatal to the crawl before any page is fetched.
func NewFileSystemSink(root string, disambiguate bool, logger *zap.Logger) (*FileSystemSink, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output root %s: %w", root, err)
	}
	return &FileSystemSink{
		root:         root,
		disambiguate: disambiguate,
		logger:       logger,
	}, nil
}

// EnsurePageDir creates the page directory with its text/ and images/
// subdirectories.
func (s *FileSystemSink) EnsurePageDir(ctx context.Context, pathKey string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	dir := filepath.Join(s.root, pathKey)
	for _, sub := range []string{dir, filepath.Join(dir, imageDirName), filepath.Join(dir, textDirName)} {
		if err := os.MkdirAll(sub, 0o750); err != nil {
			return fmt.Errorf("create page dir %s: %w", sub, err)
		}
	}
	return nil
}

// SaveText writes the flattened page text prefixed with the source URL and
// page type, returning the file's path relative to the output root.
func (s *FileSystemSink) SaveText(ctx context.Context, pathKey, originalURL string, pageType PageType, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	rel := filepath.Join(pathKey, textDirName, textFileName)
	target := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create text dir for %s: %w", target, err)
	}
	content := fmt.Sprintf("URL: %s\nPage Type: %s\n\n%s", originalURL, pageType, text)
	if err := os.WriteFile(target, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write text %s: %w", target, err)
	}
	return rel, nil
}

// SaveImage writes image bytes under the page's images directory and returns
// the path relative to the output root. Without disambiguation a repeated
// filename silently overwrites the earlier file; with it, a numeric suffix is
// appended until the name is free.
func (s *FileSystemSink) SaveImage(ctx context.Context, pathKey, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	dir := filepath.Join(s.root, pathKey, imageDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create image dir %s: %w", dir, err)
	}
	if s.disambiguate {
		filename = s.uniqueName(dir, filename)
	}
	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", fmt.Errorf("write image %s: %w", target, err)
	}
	return filepath.Join(pathKey, imageDirName, filename), nil
}

func (s *FileSystemSink) uniqueName(dir, filename string) string {
	if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
		return filename
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// SavePage writes the page record as indented JSON.
func (s *FileSystemSink) SavePage(ctx context.Context, record PageRecord) error {
	target := filepath.Join(s.root, record.Path, pageInfoFile)
	return s.writeJSON(ctx, target, record)
}

// SaveHierarchy writes the site hierarchy graph at the output root.
func (s *FileSystemSink) SaveHierarchy(ctx context.Context, nodes map[string]*HierarchyNode) error {
	return s.writeJSON(ctx, filepath.Join(s.root, hierarchyFile), nodes)
}

// SaveListings writes the per-type page listings at the output root.
func (s *FileSystemSink) SaveListings(ctx context.Context, listings Listings) error {
	return s.writeJSON(ctx, filepath.Join(s.root, listingsFile), listings)
}

// SaveSummary writes the crawl run summary at the output root.
func (s *FileSystemSink) SaveSummary(ctx context.Context, summary Summary) error {
	return s.writeJSON(ctx, filepath.Join(s.root, summaryFile), summary)
}

func (s *FileSystemSink) writeJSON(ctx context.Context, target string, v any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(target), err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", target, err)
	}
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
