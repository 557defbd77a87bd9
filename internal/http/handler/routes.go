package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contentapi/internal/render"
	"contentapi/internal/service"
)

// postPayload is the request body for creating and updating posts.
// Uploads carries descriptors previously returned by the image upload
// endpoint; embedding them here lets a client create a post and bind its
// images in one request.
type postPayload struct {
	Title      string                    `json:"title"`
	RawContent string                    `json:"raw_content"`
	Uploads    []render.UploadDescriptor `json:"uploads"`
}

// attachPayload is the request body for binding completed uploads to an
// existing post.
type attachPayload struct {
	Uploads []render.UploadDescriptor `json:"uploads"`
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListPosts returns a page of posts ordered newest first.
func ListPosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// CreatePost creates a post, rendering its content before it is stored.
func CreatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload postPayload
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		post, err := svc.Create(c.UserContext(), service.CreatePostInput{
			Title:      payload.Title,
			RawContent: payload.RawContent,
			Uploads:    payload.Uploads,
		})
		if err != nil {
			return writePostError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// GetPost returns a post by ID with its rendered content.
func GetPost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		post, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writePostError(c, err)
		}
		return c.JSON(post)
	}
}

// GetPostBySlug returns a post by its URL slug.
func GetPostBySlug(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		post, err := svc.GetBySlug(c.UserContext(), slug)
		if err != nil {
			return writePostError(c, err)
		}
		return c.JSON(post)
	}
}

// UpdatePost replaces a post's title and content and re-renders it.
func UpdatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var payload postPayload
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		post, err := svc.Update(c.UserContext(), id, service.UpdatePostInput{
			Title:      payload.Title,
			RawContent: payload.RawContent,
			Uploads:    payload.Uploads,
		})
		if err != nil {
			return writePostError(c, err)
		}
		return c.JSON(post)
	}
}

// DeletePost removes a post by ID.
func DeletePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writePostError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadImage accepts an image as multipart/form-data (field name: file,
// optional fields: temporary_id, alt_text) and returns the upload
// descriptor the content pipeline resolves against.
func UploadImage(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		temporaryID := c.FormValue("temporary_id")
		if temporaryID == "" {
			return writeError(c, fiber.StatusBadRequest, "TEMPORARY_ID_REQUIRED", "temporary_id is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		desc, err := svc.UploadImage(c.UserContext(), f, temporaryID, fh.Filename, c.FormValue("alt_text"), ct, fh.Size)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(desc)
	}
}

// AttachPostImages binds completed uploads to an existing post and
// re-renders its content.
func AttachPostImages(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var payload attachPayload
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		post, err := svc.AttachImages(c.UserContext(), id, payload.Uploads)
		if err != nil {
			return writePostError(c, err)
		}
		return c.JSON(post)
	}
}

// writePostError translates service errors into HTTP error responses.
func writePostError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
	case errors.Is(err, service.ErrTitleRequired):
		return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
	case errors.Is(err, service.ErrContentRequired):
		return writeError(c, fiber.StatusBadRequest, "CONTENT_REQUIRED", "raw_content is required")
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrSlugRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid identifier")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all rendering and persistence rules live in the
// service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, postSvc service.PostService, assetSvc service.AssetService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/posts", ListPosts(postSvc))
	app.Post("/posts", CreatePost(postSvc))
	app.Get("/posts/slug/:slug", GetPostBySlug(postSvc))
	app.Get("/posts/:id", GetPost(postSvc))
	app.Put("/posts/:id", UpdatePost(postSvc))
	app.Delete("/posts/:id", DeletePost(postSvc))
	app.Post("/posts/:id/images", AttachPostImages(postSvc))

	app.Post("/images", UploadImage(assetSvc))
}
