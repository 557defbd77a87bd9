package postgres

import (
	"context"
	"database/sql"

	"contentapi/internal/model"
	"contentapi/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

const postColumns = `id, title, slug, raw_content, rendered_content, read_time_minutes, render_version, created_at, updated_at`

// rowScanner abstracts sql.Row and sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	var rendered sql.NullString
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.RawContent,
		&rendered,
		&p.ReadTimeMinutes,
		&p.RenderVersion,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.RenderedContent = rendered.String
	return &p, nil
}

// renderedValue maps the never-rendered state (render_version 0) to NULL.
func renderedValue(post *model.Post) sql.NullString {
	return sql.NullString{String: post.RenderedContent, Valid: post.RenderVersion > 0}
}

// Create inserts a new post row and its image rows in one transaction.
func (r *PostPostgres) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + postColumns + `
	`
	row := tx.QueryRowContext(ctx, q,
		post.ID,
		post.Title,
		post.Slug,
		post.RawContent,
		renderedValue(post),
		post.ReadTimeMinutes,
		post.RenderVersion,
		post.CreatedAt,
		post.UpdatedAt,
	)
	out, err := scanPost(row)
	if err != nil {
		return nil, err
	}

	if err := insertImages(ctx, tx, post.Images); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out.Images = post.Images
	return out, nil
}

// Update rewrites the post row and replaces its image rows wholesale.
func (r *PostPostgres) Update(ctx context.Context, post *model.Post) (*model.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		UPDATE posts
		SET title = $2, slug = $3, raw_content = $4, rendered_content = $5,
		    read_time_minutes = $6, render_version = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + postColumns + `
	`
	row := tx.QueryRowContext(ctx, q,
		post.ID,
		post.Title,
		post.Slug,
		post.RawContent,
		renderedValue(post),
		post.ReadTimeMinutes,
		post.RenderVersion,
		post.UpdatedAt,
	)
	out, err := scanPost(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_images WHERE post_id = $1`, post.ID); err != nil {
		return nil, err
	}
	if err := insertImages(ctx, tx, post.Images); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out.Images = post.Images
	return out, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, images []model.PostImage) error {
	const q = `
		INSERT INTO post_images (id, post_id, asset_id, url, alt_text, anchor, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, img := range images {
		if _, err := tx.ExecContext(ctx, q,
			img.ID,
			img.PostID,
			img.AssetID,
			img.URL,
			img.AltText,
			img.Anchor,
			img.Position,
			img.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// FindByID fetches a single post and its images by post ID.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if post.Images, err = r.findImages(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// FindBySlug fetches a single post and its images by slug.
func (r *PostPostgres) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE slug = $1 ORDER BY created_at DESC LIMIT 1`
	post, err := scanPost(r.db.QueryRowContext(ctx, q, slug))
	if err != nil {
		return nil, err
	}
	if post.Images, err = r.findImages(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// findImages loads a post's images ordered by position; the pipeline's
// positional fallback depends on that ordering never changing.
func (r *PostPostgres) findImages(ctx context.Context, postID string) ([]model.PostImage, error) {
	const q = `
		SELECT id, post_id, asset_id, url, alt_text, anchor, position, created_at
		FROM post_images
		WHERE post_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]model.PostImage, 0)
	for rows.Next() {
		var img model.PostImage
		if err := rows.Scan(
			&img.ID,
			&img.PostID,
			&img.AssetID,
			&img.URL,
			&img.AltText,
			&img.Anchor,
			&img.Position,
			&img.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// List returns posts using LIMIT/OFFSET pagination and a total count.
// Images are not loaded for list views.
func (r *PostPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Post], error) {
	const qCount = `SELECT COUNT(*) FROM posts`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Post]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a post by ID. It does not return an error if the row does not exist.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
