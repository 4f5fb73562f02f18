package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/moderation"
)

type mergeRequest struct {
	MasterID    int64  `json:"master_id"`
	DuplicateID int64  `json:"duplicate_id"`
	PairID      *int64 `json:"pair_id,omitempty"`
}

type rescanRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) handleListFlags(c echo.Context) error {
	items, err := s.moderation.ListFlagged(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list pending flags failed")
		return internalError(c, "Failed to load moderation queue")
	}
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleApproveFlag(c echo.Context) error {
	return s.resolveFlag(c, db.FlagStatusApproved)
}

func (s *Server) handleRejectFlag(c echo.Context) error {
	return s.resolveFlag(c, db.FlagStatusRejected)
}

func (s *Server) resolveFlag(c echo.Context, decision string) error {
	flagID, ok := pathID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	resolution, err := s.moderation.ResolveFlag(c.Request().Context(), flagID, decision, principal.Username)
	if err != nil {
		return s.moderationError(c, err, "resolve moderation flag failed")
	}
	return success(c, resolution)
}

func (s *Server) handleListPairs(c echo.Context) error {
	items, err := s.moderation.ListPairs(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list pending pairs failed")
		return internalError(c, "Failed to load duplicate queue")
	}
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleIgnorePair(c echo.Context) error {
	pairID, ok := pathID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	resolution, err := s.moderation.IgnorePair(c.Request().Context(), pairID, principal.Username)
	if err != nil {
		return s.moderationError(c, err, "ignore duplicate pair failed")
	}
	return success(c, resolution)
}

func (s *Server) handleMerge(c echo.Context) error {
	var req mergeRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	result, err := s.moderation.Merge(c.Request().Context(), moderation.MergeRequest{
		MasterID:    req.MasterID,
		DuplicateID: req.DuplicateID,
		PairID:      req.PairID,
		Actor:       principal.Username,
	})
	if err != nil {
		return s.moderationError(c, err, "merge failed")
	}
	return success(c, result)
}

func (s *Server) handleRescan(c echo.Context) error {
	var req rescanRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	result, err := s.moderation.Rescan(c.Request().Context(), req.Limit)
	if err != nil {
		return s.moderationError(c, err, "rescan failed")
	}
	return success(c, result)
}

func (s *Server) moderationError(c echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, moderation.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, moderation.ErrNotFound):
		return failNotFound(c, err.Error())
	default:
		s.logger.Error().Err(err).Msg(logMessage)
		return internalError(c, "Moderation operation failed")
	}
}
