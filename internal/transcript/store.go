// Package transcript persists one row per handled chat message, for
// diagnostics and usage accounting.
package transcript

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one handled message.
type Entry struct {
	ID               string
	SessionKey       string
	Persona          string
	Categories       []string
	Confidence       float64
	UserText         string
	ReplyText        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Status           string // "ok" or "error"
	CreatedAt        time.Time
}

// Counters summarizes the transcript for status displays.
type Counters struct {
	Handled     int
	Failed      int
	TotalTokens int
}

// Store is a sqlite-backed transcript log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id TEXT PRIMARY KEY,
	session_key TEXT NOT NULL,
	persona TEXT NOT NULL,
	categories TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0,
	user_text TEXT NOT NULL,
	reply_text TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'ok',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session_key);
CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
`

// NewStore opens (and migrates) the transcript database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply transcript schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// truncation caps stored text so the transcript stays a log, not an archive.
const maxStoredText = 4096

// Record inserts one entry. A zero ID and CreatedAt are filled in.
func (s *Store) Record(e Entry) error {
	if s == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO transcripts
		(id, session_key, persona, categories, confidence, user_text, reply_text,
		 prompt_tokens, completion_tokens, total_tokens, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionKey, e.Persona, strings.Join(e.Categories, ","), e.Confidence,
		truncate(e.UserText), truncate(e.ReplyText),
		e.PromptTokens, e.CompletionTokens, e.TotalTokens, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record transcript: %w", err)
	}
	return nil
}

// Count returns summary counters over all recorded entries.
func (s *Store) Count() (Counters, error) {
	if s == nil {
		return Counters{}, nil
	}
	var c Counters
	row := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status != 'ok' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(total_tokens), 0) FROM transcripts`)
	if err := row.Scan(&c.Handled, &c.Failed, &c.TotalTokens); err != nil {
		return Counters{}, fmt.Errorf("count transcripts: %w", err)
	}
	return c, nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, session_key, persona, categories, confidence,
		user_text, reply_text, prompt_tokens, completion_tokens, total_tokens, status, created_at
		FROM transcripts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var categories string
		if err := rows.Scan(&e.ID, &e.SessionKey, &e.Persona, &categories, &e.Confidence,
			&e.UserText, &e.ReplyText, &e.PromptTokens, &e.CompletionTokens,
			&e.TotalTokens, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		if categories != "" {
			e.Categories = strings.Split(categories, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func truncate(s string) string {
	if len(s) <= maxStoredText {
		return s
	}
	return s[:maxStoredText] + "..."
}
