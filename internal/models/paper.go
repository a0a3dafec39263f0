package models

// Paper is one entry from the daily paper feed.
type Paper struct {
	// Title is the paper title as listed on the feed.
	Title string `json:"title"`

	// ArxivID is the paper's arXiv identifier (e.g. "2408.01234").
	ArxivID string `json:"arxiv_id"`

	// ArxivLink is the canonical arXiv PDF link.
	ArxivLink string `json:"arxiv_link"`

	// FeedLink is the paper's page on the feed site.
	FeedLink string `json:"feed_link,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract"`
}

// Request converts the paper to a summary request.
func (p *Paper) Request() SummaryRequest {
	return SummaryRequest{Title: p.Title, Abstract: p.Abstract}
}
