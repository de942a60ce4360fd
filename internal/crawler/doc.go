// Package crawler implements the site snapshot engine: URL normalization,
// page classification, content extraction, the breadth-first crawl loop with
// its frontier and visited-set bookkeeping, the hierarchy builder, and the
// fetcher and sink collaborators used by the sitesnap executable.
package crawler
