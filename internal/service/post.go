package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"contentapi/internal/model"
	"contentapi/internal/render"
	"contentapi/internal/repository"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrSlugRequired    = errors.New("slug is required")
	ErrNotFound        = errors.New("post not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
)

// PostListResult is the service-level DTO for paginated posts.
type PostListResult struct {
	Items []model.Post `json:"data"`
	Total int          `json:"total"`
}

// CreatePostInput carries a new post's author input: the raw markup plus
// descriptors for any images uploaded while writing it, in upload order.
type CreatePostInput struct {
	Title      string
	RawContent string
	Uploads    []render.UploadDescriptor
}

// UpdatePostInput mirrors CreatePostInput for an existing post.
type UpdatePostInput struct {
	Title      string
	RawContent string
	Uploads    []render.UploadDescriptor
}

// PostService defines the use cases for handling posts. Every mutation
// runs the rendering pipeline before the write commits, so persisted
// derived fields always match the persisted raw content and images.
type PostService interface {
	// Create resolves uploads into the content, renders it and persists
	// the post.
	Create(ctx context.Context, in CreatePostInput) (*model.Post, error)

	// Update re-runs the pipeline over the new content, the post's
	// existing images and any newly uploaded ones, then persists.
	Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error)

	// Get returns a single post by its ID. Posts rendered by an older
	// converter version are re-rendered transiently before being
	// returned; the stored record is left untouched.
	Get(ctx context.Context, id string) (*model.Post, error)

	// GetBySlug behaves like Get, addressed by slug.
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)

	// List returns posts using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*PostListResult, error)

	// Delete removes a post by ID.
	Delete(ctx context.Context, id string) error

	// AttachImages attaches completed uploads to an existing post and
	// re-renders it.
	AttachImages(ctx context.Context, id string, uploads []render.UploadDescriptor) (*model.Post, error)
}

// postService is a concrete implementation of PostService.
type postService struct {
	repo     repository.PostRepository
	pipeline *render.Pipeline
}

// NewPostService constructs a new PostService.
func NewPostService(repo repository.PostRepository, pipeline *render.Pipeline) PostService {
	return &postService{repo: repo, pipeline: pipeline}
}

func (s *postService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if in.RawContent == "" {
		return nil, ErrContentRequired
	}

	res := s.pipeline.Render(in.RawContent, nil, in.Uploads)

	now := time.Now().UTC()
	post := &model.Post{
		ID:              uuid.New().String(),
		Title:           in.Title,
		Slug:            slugify(in.Title),
		RawContent:      res.ResolvedContent,
		RenderedContent: res.RenderedContent,
		ReadTimeMinutes: res.ReadTimeMinutes,
		RenderVersion:   res.RenderVersion,
		Images:          adoptImages(res.Images, "", now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range post.Images {
		post.Images[i].PostID = post.ID
	}

	return s.repo.Create(ctx, post)
}

func (s *postService) Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if in.RawContent == "" {
		return nil, ErrContentRequired
	}

	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.Render(in.RawContent, post.Images, in.Uploads)

	now := time.Now().UTC()
	post.Title = in.Title
	post.Slug = slugify(in.Title)
	post.RawContent = res.ResolvedContent
	post.RenderedContent = res.RenderedContent
	post.ReadTimeMinutes = res.ReadTimeMinutes
	post.RenderVersion = res.RenderVersion
	post.Images = adoptImages(res.Images, post.ID, now)
	post.UpdatedAt = now

	return s.repo.Update(ctx, post)
}

// Get returns a post by ID, healing stale rendered output in memory only.
func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.pipeline.NeedsRender(post) {
		s.pipeline.Heal(post)
	}
	return post, nil
}

// GetBySlug returns a post by slug, healing stale rendered output in
// memory only.
func (s *postService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.pipeline.NeedsRender(post) {
		s.pipeline.Heal(post)
	}
	return post, nil
}

// List returns paginated posts without exposing repository types.
func (s *postService) List(ctx context.Context, limit, offset int) (*PostListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PostListResult{Items: res.Items, Total: res.Total}, nil
}

// Delete removes a post by ID.
func (s *postService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AttachImages resolves completed uploads against the post's current
// content and persists the re-rendered post.
func (s *postService) AttachImages(ctx context.Context, id string, uploads []render.UploadDescriptor) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.Render(post.RawContent, post.Images, uploads)

	now := time.Now().UTC()
	post.RawContent = res.ResolvedContent
	post.RenderedContent = res.RenderedContent
	post.ReadTimeMinutes = res.ReadTimeMinutes
	post.RenderVersion = res.RenderVersion
	post.Images = adoptImages(res.Images, post.ID, now)
	post.UpdatedAt = now

	return s.repo.Update(ctx, post)
}

func (s *postService) find(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// adoptImages assigns identity to images freshly produced by the pipeline
// while leaving already-persisted ones (which carry an ID) untouched.
func adoptImages(images []model.PostImage, postID string, now time.Time) []model.PostImage {
	for i := range images {
		if images[i].ID == "" {
			images[i].ID = uuid.New().String()
			images[i].CreatedAt = now
		}
		if postID != "" {
			images[i].PostID = postID
		}
	}
	return images
}

// slugify lowercases the title and keeps letters and digits, joining runs
// of anything else with single hyphens.
func slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case 'a' <= r && r <= 'z' || '0' <= r && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
