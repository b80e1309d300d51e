package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one scan run. Placements are keyed by session so the same
// lattice cell can be recorded again in a later scan.
type Session struct {
	SessionID  string     `json:"session_id"`
	VoxelSize  float64    `json:"voxel_size"`
	ConfigJSON string     `json:"config_json,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// SessionStore provides persistence for scan sessions.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db.DB, now: time.Now}
}

// Start records a new session and returns it with a fresh UUID.
func (s *SessionStore) Start(voxelSize float64, configJSON string) (*Session, error) {
	sess := &Session{
		SessionID:  uuid.New().String(),
		VoxelSize:  voxelSize,
		ConfigJSON: configJSON,
		StartedAt:  s.now(),
	}
	_, err := s.db.Exec(
		`INSERT INTO voxel_sessions (session_id, voxel_size, config_json, started_at) VALUES (?, ?, ?, ?)`,
		sess.SessionID, sess.VoxelSize, nullString(sess.ConfigJSON), sess.StartedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// End stamps the session's end time. Ending an unknown session returns
// sql.ErrNoRows.
func (s *SessionStore) End(sessionID string) error {
	result, err := s.db.Exec(
		`UPDATE voxel_sessions SET ended_at = ? WHERE session_id = ?`,
		s.now().UnixNano(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get loads a session by ID.
func (s *SessionStore) Get(sessionID string) (*Session, error) {
	var (
		sess       Session
		configJSON sql.NullString
		startedAt  int64
		endedAt    sql.NullInt64
	)
	err := s.db.QueryRow(
		`SELECT session_id, voxel_size, config_json, started_at, ended_at FROM voxel_sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&sess.SessionID, &sess.VoxelSize, &configJSON, &startedAt, &endedAt)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	sess.ConfigJSON = configJSON.String
	sess.StartedAt = time.Unix(0, startedAt)
	if endedAt.Valid {
		t := time.Unix(0, endedAt.Int64)
		sess.EndedAt = &t
	}
	return &sess, nil
}
