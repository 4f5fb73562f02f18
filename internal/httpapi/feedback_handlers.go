package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
	"workpulse.dev/pulse/internal/intake"
	"workpulse.dev/pulse/internal/moderation"
	payloadschema "workpulse.dev/pulse/schema"
)

type updateWorkflowRequest struct {
	Status          string  `json:"status"`
	ManagerResponse *string `json:"manager_response,omitempty"`
}

var allowedWorkflowStatuses = map[string]struct{}{
	db.WorkflowOpen:       {},
	db.WorkflowInProgress: {},
	db.WorkflowResolved:   {},
	db.WorkflowClosed:     {},
}

func (s *Server) handleModerationKeywords(c echo.Context) error {
	return success(c, map[string]any{
		"words": s.moderation.Screener().Phrases(),
	})
}

// handleSubmitFeedback validates the v1 payload against the schema, screens
// and stores the submission, then hands it to the background scan dispatcher.
// A flagged verdict is still a successful intake.
func (s *Server) handleSubmitFeedback(c echo.Context) error {
	body := c.Request().Body
	if body == nil {
		return failValidation(c, map[string]string{"payload": "request body is required"})
	}
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return failValidation(c, map[string]string{"payload": "failed to read request body"})
	}

	item, err := payloadschema.ValidateFeedbackItemPayload(raw)
	if err != nil {
		return failValidation(c, map[string]string{"payload": err.Error()})
	}

	result, err := s.intake.SubmitOne(c.Request().Context(), intake.Request{
		Department: item.Department,
		Category:   item.Category,
		Subject:    item.Subject,
		Body:       item.Body,
	})
	if err != nil {
		if errors.Is(err, moderation.ErrInvalidInput) {
			return failValidation(c, map[string]string{"body": err.Error()})
		}
		s.logger.Error().Err(err).Msg("submission intake failed")
		return internalError(c, "Failed to store feedback")
	}

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(result.Submission)
	}

	message := "Feedback submitted successfully."
	if result.Screen.Toxic {
		message = "Feedback received and is pending manager review."
	}
	return successWithStatus(c, http.StatusCreated, map[string]any{
		"message":    message,
		"submission": result.Submission,
		"moderation": result.Screen,
	})
}

func (s *Server) handleBrowseFeedback(c echo.Context) error {
	items, err := s.pool.ListApprovedSubmissions(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list approved submissions failed")
		return internalError(c, "Failed to load feedback")
	}
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleListAllFeedback(c echo.Context) error {
	items, err := s.pool.ListAllSubmissions(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list submissions failed")
		return internalError(c, "Failed to load feedback")
	}
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleGetFeedback(c echo.Context) error {
	submissionID, ok := pathID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	record, err := s.pool.GetSubmission(c.Request().Context(), submissionID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Submission not found")
		}
		s.logger.Error().Err(err).Int64("submission_id", submissionID).Msg("load submission failed")
		return internalError(c, "Failed to load feedback")
	}
	return success(c, record)
}

func (s *Server) handleUpvote(c echo.Context) error {
	submissionID, ok := pathID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	upvotes, err := s.pool.UpvoteSubmission(c.Request().Context(), submissionID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Submission not found")
		}
		s.logger.Error().Err(err).Int64("submission_id", submissionID).Msg("upvote failed")
		return internalError(c, "Failed to record upvote")
	}
	return success(c, map[string]any{"upvotes": upvotes})
}

func (s *Server) handleUpdateWorkflow(c echo.Context) error {
	submissionID, ok := pathID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	var req updateWorkflowRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	status := strings.TrimSpace(req.Status)
	if _, allowed := allowedWorkflowStatuses[status]; !allowed {
		return failValidation(c, map[string]string{
			"status": "must be one of: Open, In Progress, Resolved, Closed",
		})
	}

	record, err := s.pool.UpdateWorkflow(c.Request().Context(), submissionID, status, req.ManagerResponse, globaltime.UTC())
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Submission not found")
		}
		s.logger.Error().Err(err).Int64("submission_id", submissionID).Msg("workflow update failed")
		return internalError(c, "Failed to update feedback")
	}
	return success(c, record)
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
