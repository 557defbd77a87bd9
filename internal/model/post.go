package model

import "time"

// Post is a content document: author-authored markup plus the values
// derived from it (rendered HTML, read time) and its attached images.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, render) without coupling to persistence.
type Post struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	RawContent      string      `json:"raw_content"`
	RenderedContent string      `json:"rendered_content"`
	ReadTimeMinutes int         `json:"read_time_minutes"`
	RenderVersion   int         `json:"render_version"`
	Images          []PostImage `json:"images"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Rendered reports whether derived fields have ever been computed.
// RenderVersion is 0 until the first pipeline run persists its output.
func (p *Post) Rendered() bool {
	return p.RenderVersion > 0
}

// PostImage is an uploaded image attached to a post. Position is insertion
// order and must never be reordered; Anchor is the exact placeholder
// substring last used to locate this image in the post content, empty while
// the image has no resolved in-content anchor.
type PostImage struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AssetID   string    `json:"asset_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
	Anchor    string    `json:"anchor"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
