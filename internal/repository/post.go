package repository

import (
	"context"

	"contentapi/internal/model"
)

// PostRepository defines data access for posts using SQL queries only.
// No business logic here; strictly persistence operations.
//
// Create and Update persist the post row together with its post_images
// rows in one transaction; Update replaces the image set wholesale since
// the pipeline may rewrite anchors on every run. FindByID and FindBySlug
// load images ordered by position so insertion order survives the
// round trip.
type PostRepository interface {
	// Create inserts a new post record and its images.
	// The caller provides required fields (ID, CreatedAt, image IDs).
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// Update rewrites a post row and replaces its image rows.
	Update(ctx context.Context, post *model.Post) (*model.Post, error)

	// FindByID returns a post with its images by post ID.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// FindBySlug returns a post with its images by slug.
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)

	// List returns a paginated list of posts (without images) and the
	// total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Post], error)

	// Delete removes a post by ID; image rows go with it via cascade.
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
