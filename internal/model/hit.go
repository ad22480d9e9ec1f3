package model

// SearchHit is one raw result from a web-search provider.
type SearchHit struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Provider string `json:"provider,omitempty"`
}
