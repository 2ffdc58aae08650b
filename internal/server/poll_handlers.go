package server

import (
	"pollhive/internal/models"
	"pollhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPolls handles GET /api/polls
func (s *Server) GetPolls(c *fiber.Ctx) error {
	polls, err := s.pollService.ListPolls(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if polls == nil {
		polls = []*models.Poll{}
	}
	return c.JSON(polls)
}

// GetPoll handles GET /api/polls/:id. Works anonymously; a logged-in caller
// additionally gets their own vote on the poll.
func (s *Server) GetPoll(c *fiber.Ctx) error {
	pollID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID, _ := s.optionalUserID(c)
	poll, serr := s.pollService.GetPoll(c.Context(), pollID, userID)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(poll)
}

// CreatePoll handles POST /api/polls
func (s *Server) CreatePoll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Category string   `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	poll, err := s.pollService.CreatePoll(c.Context(), service.CreatePollInput{
		UserID:   userID,
		Question: req.Question,
		Options:  req.Options,
		Category: req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(poll)
}

// VotePoll handles PATCH /api/polls/:pollId/vote
func (s *Server) VotePoll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pollID, err := s.parseID(c, "pollId")
	if err != nil {
		return nil
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Option == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Option is required"))
	}

	result, serr := s.pollService.Vote(c.Context(), service.VoteInput{
		UserID:     userID,
		PollID:     pollID,
		OptionText: req.Option,
	})
	if serr != nil {
		return respondError(c, serr)
	}

	return c.JSON(fiber.Map{
		"message":        "Vote recorded",
		"updated_option": result.UpdatedOption,
		"poll":           result.Poll,
	})
}

// UpdatePoll handles PATCH /api/polls/:id
func (s *Server) UpdatePoll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pollID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Question string   `json:"question"`
		Category string   `json:"category"`
		Options  []string `json:"options"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	poll, serr := s.pollService.UpdatePoll(c.Context(), service.UpdatePollInput{
		UserID:   userID,
		PollID:   pollID,
		Question: req.Question,
		Category: req.Category,
		Options:  req.Options,
	})
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(poll)
}

// DeletePoll handles DELETE /api/polls/:id
func (s *Server) DeletePoll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pollID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	poll, serr := s.pollService.DeletePoll(c.Context(), pollID, userID)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(fiber.Map{
		"message": "Poll deleted",
		"poll":    poll,
	})
}

// GetMyPolls handles GET /api/polls/user/mypolls
func (s *Server) GetMyPolls(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	polls, err := s.pollService.ListMyPolls(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if polls == nil {
		polls = []*models.Poll{}
	}
	return c.JSON(polls)
}

// GetVotedPolls handles GET /api/polls/voted
func (s *Server) GetVotedPolls(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	polls, err := s.pollService.ListVotedPolls(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if polls == nil {
		polls = []*models.Poll{}
	}
	return c.JSON(polls)
}
