package crawler

// CrawlState owns every piece of mutable crawl bookkeeping: the FIFO
// frontier, the claimed and visited sets, the hierarchy graph, and the
// per-type partitions. It is owned exclusively by the Engine's sequential
// loop, so no locking is required.
type CrawlState struct {
	frontier []string
	claimed  map[string]struct{}
	visited  map[string]struct{}

	hierarchy map[string]*HierarchyNode

	// Partition slices keep insertion order so listings are deterministic.
	products   []string
	categories []string
	content    []string
}

// NewCrawlState returns an empty state.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		claimed:   make(map[string]struct{}),
		visited:   make(map[string]struct{}),
		hierarchy: make(map[string]*HierarchyNode),
	}
}

// Enqueue appends a URL to the frontier tail unless its normalized form has
// already been claimed. Claiming at enqueue time keeps the frontier free of
// duplicates. Returns true when the URL was queued.
func (s *CrawlState) Enqueue(rawURL string) bool {
	key := NormalizeURL(rawURL)
	if key == "" {
		return false
	}
	if _, ok := s.claimed[key]; ok {
		return false
	}
	s.claimed[key] = struct{}{}
	s.frontier = append(s.frontier, rawURL)
	return true
}

// Dequeue pops the frontier head, preserving breadth-first order.
func (s *CrawlState) Dequeue() (string, bool) {
	if len(s.frontier) == 0 {
		return "", false
	}
	head := s.frontier[0]
	s.frontier = s.frontier[1:]
	return head, true
}

// HasPending reports whether any URL is still awaiting a visit.
func (s *CrawlState) HasPending() bool {
	return len(s.frontier) > 0
}

// MarkVisited records a normalized URL as processed. It returns false when
// the URL was already visited, making a redundant dequeue a no-op.
func (s *CrawlState) MarkVisited(normalizedURL string) bool {
	if _, ok := s.visited[normalizedURL]; ok {
		return false
	}
	s.visited[normalizedURL] = struct{}{}
	return true
}

// Visited reports membership in the visited set.
func (s *CrawlState) Visited(normalizedURL string) bool {
	_, ok := s.visited[normalizedURL]
	return ok
}

// RecordNode registers a page in the hierarchy and its type partition. A URL
// enters the hierarchy exactly once; repeat calls are no-ops.
func (s *CrawlState) RecordNode(normalizedURL, title string, pageType PageType) {
	if _, ok := s.hierarchy[normalizedURL]; ok {
		return
	}
	s.hierarchy[normalizedURL] = &HierarchyNode{
		Path:     PathKey(normalizedURL),
		Title:    title,
		Type:     pageType,
		Children: []string{},
	}
	switch pageType {
	case PageTypeProduct:
		s.products = append(s.products, normalizedURL)
	case PageTypeCategory:
		s.categories = append(s.categories, normalizedURL)
	default:
		s.content = append(s.content, normalizedURL)
	}
}

// AddChild appends child to parent's children when both are known hierarchy
// nodes. Link targets not yet scraped are dropped, which biases edges toward
// pages visited earlier. Returns true when the edge was recorded.
func (s *CrawlState) AddChild(parentURL, childURL string) bool {
	parent, ok := s.hierarchy[parentURL]
	if !ok {
		return false
	}
	if _, ok := s.hierarchy[childURL]; !ok {
		return false
	}
	for _, existing := range parent.Children {
		if existing == childURL {
			return false
		}
	}
	parent.Children = append(parent.Children, childURL)
	return true
}

// Hierarchy exposes the accumulated site graph.
func (s *CrawlState) Hierarchy() map[string]*HierarchyNode {
	return s.hierarchy
}

// Listings returns the per-type partition of every scraped URL.
func (s *CrawlState) Listings() Listings {
	return Listings{
		Products:   append([]string{}, s.products...),
		Categories: append([]string{}, s.categories...),
		Content:    append([]string{}, s.content...),
	}
}
