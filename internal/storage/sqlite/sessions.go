package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
)

// ErrUnknownSession is returned for a session id that was never started.
var ErrUnknownSession = errors.New("unknown session")

// Session is one recording run.
type Session struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	StartedAt int64  `json:"started_at_ns"`
	// Frames is the number of distinct timestamps recorded.
	Frames int `json:"frames"`
}

// Sample is one value of a series.
type Sample struct {
	Timestamp int64   `json:"timestamp_ms"`
	Value     float64 `json:"value"`
}

// Series holds every recorded value of one output identifier.
type Series struct {
	ID      string   `json:"id"`
	Samples []Sample `json:"samples"`
}

// StartSession creates a session. source describes where frames came from,
// for example a recording path.
func (r *Recorder) StartSession(source string) (*Session, error) {
	s := &Session{
		SessionID: uuid.New().String(),
		Source:    source,
		StartedAt: r.clock.Now().UnixNano(),
	}
	_, err := r.db.Exec(`INSERT INTO sessions (session_id, source, started_at_ns) VALUES (?, ?, ?)`,
		s.SessionID, s.Source, s.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// Record stores one frame's output list. Recording the same session and
// timestamp again is ignored, so a consumer may poll an unchanged snapshot.
func (r *Recorder) Record(sessionID string, timestamp int64, outs []params.Output) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRow(`SELECT COUNT(*) FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO session_outputs (session_id, timestamp_ms, position, output_id, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record: %w", err)
	}
	defer stmt.Close()

	for i, o := range outs {
		if _, err = stmt.Exec(sessionID, timestamp, i, o.ID, o.Value); err != nil {
			return fmt.Errorf("record %s at %d: %w", o.ID, timestamp, err)
		}
	}
	return tx.Commit()
}

// Sessions lists sessions, newest first.
func (r *Recorder) Sessions() ([]Session, error) {
	rows, err := r.db.Query(`
		SELECT s.session_id, s.source, s.started_at_ns,
		       (SELECT COUNT(DISTINCT o.timestamp_ms) FROM session_outputs o WHERE o.session_id = s.session_id)
		FROM sessions s
		ORDER BY s.started_at_ns DESC, s.session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.SessionID, &s.Source, &s.StartedAt, &s.Frames); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSession returns one session.
func (r *Recorder) GetSession(sessionID string) (*Session, error) {
	var s Session
	err := r.db.QueryRow(`
		SELECT s.session_id, s.source, s.started_at_ns,
		       (SELECT COUNT(DISTINCT o.timestamp_ms) FROM session_outputs o WHERE o.session_id = s.session_id)
		FROM sessions s WHERE s.session_id = ?`, sessionID).
		Scan(&s.SessionID, &s.Source, &s.StartedAt, &s.Frames)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &s, nil
}

// Series returns the session's values grouped by output identifier, in the
// order identifiers first appear in a frame. An identifier emitted more than
// once in the same frame is summed, the way the avatar application adds
// injected values.
func (r *Recorder) Series(sessionID string) ([]Series, error) {
	if _, err := r.GetSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(`
		SELECT timestamp_ms, output_id, value
		FROM session_outputs
		WHERE session_id = ?
		ORDER BY timestamp_ms, position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	var out []Series
	index := map[string]int{}
	for rows.Next() {
		var (
			ts    int64
			id    string
			value float64
		)
		if err := rows.Scan(&ts, &id, &value); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, Series{ID: id})
		}
		s := &out[i]
		if n := len(s.Samples); n > 0 && s.Samples[n-1].Timestamp == ts {
			s.Samples[n-1].Value += value
			continue
		}
		s.Samples = append(s.Samples, Sample{Timestamp: ts, Value: value})
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its outputs.
func (r *Recorder) DeleteSession(sessionID string) error {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return nil
}
