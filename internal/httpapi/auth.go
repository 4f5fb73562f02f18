package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"workpulse.dev/pulse/internal/auth"
	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
)

const defaultSessionTouchInterval = time.Minute

type authPrincipal struct {
	SessionID  string
	EmployeeID int64
	Username   string
	Role       string
	ExpiresAt  time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authUserResponse struct {
	EmployeeID int64     `json:"employee_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (s *Server) requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, found := s.sessionIDFromCookie(c)
			if !found {
				return unauthorizedResponse(c)
			}

			session, err := s.pool.GetSession(c.Request().Context(), sessionID)
			if err != nil {
				if errors.Is(err, db.ErrNoRows) {
					s.clearSessionCookie(c)
					return unauthorizedResponse(c)
				}
				s.logger.Error().Err(err).Msg("session lookup failed")
				return internalError(c, "Failed to authorize request")
			}

			now := globaltime.UTC()
			if !session.ExpiresAt.After(now) {
				_ = s.pool.DeleteSession(c.Request().Context(), session.SessionID)
				s.clearSessionCookie(c)
				return unauthorizedResponse(c)
			}

			if now.Sub(session.LastSeenAt) >= defaultSessionTouchInterval {
				_ = s.pool.TouchSession(c.Request().Context(), session.SessionID, now)
			}

			c.Set("auth.principal", authPrincipal{
				SessionID:  session.SessionID,
				EmployeeID: session.EmployeeID,
				Username:   session.Username,
				Role:       session.Role,
				ExpiresAt:  session.ExpiresAt.UTC(),
			})

			return next(c)
		}
	}
}

func (s *Server) requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := principalFromContext(c)
			if !ok {
				return unauthorizedResponse(c)
			}
			if principal.Role != role {
				return fail(c, http.StatusForbidden, "Forbidden", nil)
			}
			return next(c)
		}
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	username := auth.NormalizeUsername(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		return failValidation(c, map[string]string{
			"username": "is required",
			"password": "is required",
		})
	}

	employee, err := s.pool.GetEmployeeByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "Invalid username or password", nil)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("login lookup failed")
		return internalError(c, "Failed to process login")
	}

	if !auth.VerifyPassword(password, employee.PasswordHash) {
		return fail(c, http.StatusUnauthorized, "Invalid username or password", nil)
	}

	now := globaltime.UTC()
	expiresAt := now.Add(s.opts.SessionTTL)
	sessionID, err := s.pool.CreateSession(c.Request().Context(), employee.EmployeeID, expiresAt, now)
	if err != nil {
		s.logger.Error().Err(err).Int64("employee_id", employee.EmployeeID).Msg("create session failed")
		return internalError(c, "Failed to process login")
	}

	if err := s.pool.SetEmployeeLastLogin(c.Request().Context(), employee.EmployeeID, now); err != nil {
		s.logger.Error().Err(err).Int64("employee_id", employee.EmployeeID).Msg("update last login failed")
	}

	// Opportunistic cleanup keeps the sessions table bounded without a
	// dedicated sweeper.
	if _, err := s.pool.DeleteExpiredSessions(c.Request().Context(), now); err != nil {
		s.logger.Error().Err(err).Msg("expired session cleanup failed")
	}

	s.setSessionCookie(c, sessionID, expiresAt)
	return success(c, authUserResponse{
		EmployeeID: employee.EmployeeID,
		Username:   employee.Username,
		Role:       employee.Role,
		ExpiresAt:  expiresAt,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if sessionID, found := s.sessionIDFromCookie(c); found {
		if err := s.pool.DeleteSession(c.Request().Context(), sessionID); err != nil {
			s.logger.Error().Err(err).Msg("delete session failed")
		}
	}
	s.clearSessionCookie(c)
	return success(c, map[string]any{"logged_out": true})
}

func (s *Server) handleAuthMe(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}
	return success(c, authUserResponse{
		EmployeeID: principal.EmployeeID,
		Username:   principal.Username,
		Role:       principal.Role,
		ExpiresAt:  principal.ExpiresAt,
	})
}

func principalFromContext(c echo.Context) (authPrincipal, bool) {
	principal, ok := c.Get("auth.principal").(authPrincipal)
	return principal, ok
}

func unauthorizedResponse(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Unauthorized", nil)
}

func (s *Server) sessionIDFromCookie(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(s.opts.SessionCookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (s *Server) setSessionCookie(c echo.Context, sessionID string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.opts.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSONBody(c echo.Context, target any) error {
	body := c.Request().Body
	if body == nil {
		return fmt.Errorf("request body is required")
	}
	defer func() { _ = body.Close() }()

	decoder := json.NewDecoder(io.LimitReader(body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
