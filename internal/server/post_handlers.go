package server

import (
	"time"

	"anecdote/internal/models"
	"anecdote/internal/observability"
	"anecdote/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultPostPageSize = 50

// postResponse is the wire shape for a post, carrying the author's username
// alongside the raw owner ID.
type postResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toPostResponse(p *models.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.UserID,
		Username:  p.User.Username,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toPostResponses(posts []models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out
}

// GetMyPosts handles GET /api/posts and lists the caller's own posts,
// newest first.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, defaultPostPageSize)

	posts, err := s.postService.ListUserPosts(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  toPostResponses(posts),
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetAllPosts handles GET /api/posts/all. The listing is shared across
// accounts; only single-post reads are owner-scoped.
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	p := parsePagination(c, defaultPostPageSize)

	posts, err := s.postService.ListAllPosts(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  toPostResponses(posts),
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.GetPost(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(toPostResponse(post))
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	observability.PostWrites.WithLabelValues("create", observability.Outcome(err)).Inc()
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toPostResponse(post))
}

// UpdatePost handles PUT /api/posts/:id. Both title and content are
// required; partial updates are not supported.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	observability.PostWrites.WithLabelValues("update", observability.Outcome(err)).Inc()
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(toPostResponse(post))
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	err = s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: id,
	})
	observability.PostWrites.WithLabelValues("delete", observability.Outcome(err)).Inc()
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}
