package server

import (
	"pollhive/internal/models"
	"pollhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPollComments handles GET /api/comments/poll/:pollId
func (s *Server) GetPollComments(c *fiber.Ctx) error {
	pollID, err := s.parseID(c, "pollId")
	if err != nil {
		return nil
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, serr := s.commentService.ListForPoll(c.Context(), pollID, page, limit)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(result)
}

// CreateComment handles POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content         string `json:"content"`
		PollID          uint   `json:"poll_id"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PollID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Poll ID is required"))
	}

	comment, serr := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:          userID,
		PollID:          req.PollID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if serr != nil {
		return respondError(c, serr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, serr := s.commentService.UpdateComment(c.Context(), commentID, userID, req.Content)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	result, serr := s.commentService.DeleteComment(c.Context(), commentID, userID)
	if serr != nil {
		return respondError(c, serr)
	}

	if result.Type == models.CommentSoftDeleted {
		return c.JSON(fiber.Map{
			"message": "Comment deleted",
			"type":    result.Type,
			"comment": result.Comment,
		})
	}
	return c.JSON(fiber.Map{
		"message":    "Comment deleted",
		"type":       result.Type,
		"comment_id": result.CommentID,
	})
}

// GetCommentReplies handles GET /api/comments/:commentId/replies
func (s *Server) GetCommentReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, serr := s.commentService.ListReplies(c.Context(), commentID, page, limit)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(result)
}

// GetMyComments handles GET /api/comments/user/my-comments
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := s.commentService.ListByUser(c.Context(), userID, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
