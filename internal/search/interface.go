package search

// Searcher is the search API used by the HTTP server and the CLI.
type Searcher interface {
	Search(query string, limit int) ([]Result, error)
}
