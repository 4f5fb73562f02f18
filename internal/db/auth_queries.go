package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// EmployeeRecord is the read model for accounts.
type EmployeeRecord struct {
	EmployeeID   int64      `json:"employee_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SessionRecord is a live session joined with its account.
type SessionRecord struct {
	SessionID  string    `json:"session_id"`
	EmployeeID int64     `json:"employee_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (p *Pool) CountEmployees(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM pulse.employees`

	var count int64
	if err := p.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}

func (p *Pool) CreateEmployee(ctx context.Context, username, passwordHash, role string) (*EmployeeRecord, error) {
	const q = `
INSERT INTO pulse.employees (username, password_hash, role, created_at)
VALUES ($1, $2, $3, now())
RETURNING employee_id, username, role, created_at`

	var rec EmployeeRecord
	err := p.QueryRow(ctx, q, username, passwordHash, role).Scan(
		&rec.EmployeeID,
		&rec.Username,
		&rec.Role,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create employee %q: %w", username, err)
	}
	rec.PasswordHash = passwordHash
	return &rec, nil
}

func (p *Pool) GetEmployeeByUsername(ctx context.Context, username string) (*EmployeeRecord, error) {
	const q = `
SELECT employee_id, username, password_hash, role, created_at, last_login_at
FROM pulse.employees
WHERE username = $1
LIMIT 1`

	var rec EmployeeRecord
	err := p.QueryRow(ctx, q, username).Scan(
		&rec.EmployeeID,
		&rec.Username,
		&rec.PasswordHash,
		&rec.Role,
		&rec.CreatedAt,
		&rec.LastLoginAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("get employee %q: %w", username, err)
	}
	return &rec, nil
}

func (p *Pool) SetEmployeeLastLogin(ctx context.Context, employeeID int64, at time.Time) error {
	const q = `UPDATE pulse.employees SET last_login_at = $2 WHERE employee_id = $1`

	if _, err := p.Exec(ctx, q, employeeID, at.UTC()); err != nil {
		return fmt.Errorf("set last login for employee %d: %w", employeeID, err)
	}
	return nil
}

func (p *Pool) CreateSession(ctx context.Context, employeeID int64, expiresAt, now time.Time) (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	sessionID := hex.EncodeToString(token)

	const q = `
INSERT INTO pulse.sessions (session_id, employee_id, created_at, expires_at, last_seen_at)
VALUES ($1, $2, $3, $4, $3)`

	if _, err := p.Exec(ctx, q, sessionID, employeeID, now.UTC(), expiresAt.UTC()); err != nil {
		return "", fmt.Errorf("create session for employee %d: %w", employeeID, err)
	}
	return sessionID, nil
}

func (p *Pool) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	const q = `
SELECT
	se.session_id,
	se.employee_id,
	e.username,
	e.role,
	se.expires_at,
	se.last_seen_at
FROM pulse.sessions se
JOIN pulse.employees e ON e.employee_id = se.employee_id
WHERE se.session_id = $1
LIMIT 1`

	var rec SessionRecord
	err := p.QueryRow(ctx, q, sessionID).Scan(
		&rec.SessionID,
		&rec.EmployeeID,
		&rec.Username,
		&rec.Role,
		&rec.ExpiresAt,
		&rec.LastSeenAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

func (p *Pool) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	const q = `UPDATE pulse.sessions SET last_seen_at = $2 WHERE session_id = $1`

	if _, err := p.Exec(ctx, q, sessionID, at.UTC()); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (p *Pool) DeleteSession(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM pulse.sessions WHERE session_id = $1`

	if _, err := p.Exec(ctx, q, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *Pool) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM pulse.sessions WHERE expires_at <= $1`

	tag, err := p.Exec(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
