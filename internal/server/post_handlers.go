package server

import (
	"innercircle/internal/models"
	"innercircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/v1/posts?beforeId=N
func (s *Server) GetPosts(c *fiber.Ctx) error {
	beforeID, err := s.parseCursor(c, "beforeId")
	if err != nil {
		return nil
	}

	posts, err := s.visibility.ListVisiblePosts(c.UserContext(), currentUser(c), beforeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

type createPostRequest struct {
	Text      string `json:"text"`
	CircleIDs []uint `json:"circleIds"`
}

// CreatePost handles POST /api/v1/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    currentUser(c),
		Text:      req.Text,
		CircleIDs: req.CircleIDs,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          post.ID,
		"text":        post.Text,
		"createdDate": post.CreatedDate.Format(models.DateLayout),
	})
}

// GetCircles handles GET /api/v1/circles
func (s *Server) GetCircles(c *fiber.Ctx) error {
	circles, err := s.circleService.ListCircles(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(circles)
}
