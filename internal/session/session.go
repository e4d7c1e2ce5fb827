// Package session provides conversation session management.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Message represents a chat message in a session.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Session represents a conversation session. History is bounded: once
// MaxHistory is reached the oldest turns are dropped first.
type Session struct {
	Key        string    `json:"key"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	MaxHistory int       `json:"-"`
	mu         sync.RWMutex
	turnMu     sync.Mutex
}

// NewSession creates a new session with the given key and history cap.
func NewSession(key string, maxHistory int) *Session {
	now := time.Now()
	return &Session{
		Key:        key,
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxHistory: maxHistory,
	}
}

// BeginTurn serializes message handling for this session. Rapid duplicate
// requests for the same session key queue up instead of interleaving their
// history writes. Distinct sessions do not contend.
func (s *Session) BeginTurn() { s.turnMu.Lock() }

// EndTurn releases the turn lock taken by BeginTurn.
func (s *Session) EndTurn() { s.turnMu.Unlock() }

// AddMessage appends a message, evicting the oldest when over the cap.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if s.MaxHistory > 0 && len(s.Messages) > s.MaxHistory {
		overflow := len(s.Messages) - s.MaxHistory
		s.Messages = append(s.Messages[:0:0], s.Messages[overflow:]...)
	}
	s.UpdatedAt = time.Now()
}

// History returns up to maxMessages of the most recent history.
// maxMessages <= 0 returns everything retained.
func (s *Session) History(maxMessages int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxMessages <= 0 || len(s.Messages) <= maxMessages {
		result := make([]Message, len(s.Messages))
		copy(result, s.Messages)
		return result
	}
	result := make([]Message, maxMessages)
	copy(result, s.Messages[len(s.Messages)-maxMessages:])
	return result
}

// Len returns the retained history length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Messages)
}

// Clear removes all messages from the session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = []Message{}
	s.UpdatedAt = time.Now()
}

// Manager manages sessions and their optional persistence.
type Manager struct {
	sessionsDir string
	maxHistory  int
	persist     bool
	cache       map[string]*Session
	mu          sync.RWMutex
}

// NewManager creates a new session manager. When persist is false, sessions
// live only in memory and sessionsDir is ignored.
func NewManager(sessionsDir string, maxHistory int, persist bool) *Manager {
	if persist && sessionsDir != "" {
		os.MkdirAll(sessionsDir, 0o755)
	}
	return &Manager{
		sessionsDir: sessionsDir,
		maxHistory:  maxHistory,
		persist:     persist,
		cache:       make(map[string]*Session),
	}
}

// GetOrCreate returns an existing session or creates a new one.
func (m *Manager) GetOrCreate(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.cache[key]; ok {
		return sess
	}

	var sess *Session
	if m.persist {
		sess = m.load(key)
	}
	if sess == nil {
		sess = NewSession(key, m.maxHistory)
	}

	m.cache[key] = sess
	return sess
}

// Save persists a session to disk. A no-op when persistence is disabled.
func (m *Manager) Save(sess *Session) error {
	if !m.persist {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.sessionPath(sess.Key)

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer file.Close()

	// Write metadata as first line
	meta := map[string]any{
		"_type":      "metadata",
		"created_at": sess.CreatedAt.Format(time.RFC3339),
		"updated_at": sess.UpdatedAt.Format(time.RFC3339),
	}
	metaLine, _ := json.Marshal(meta)
	file.WriteString(string(metaLine) + "\n")

	// Write messages as subsequent lines
	for _, msg := range sess.Messages {
		msgLine, _ := json.Marshal(msg)
		file.WriteString(string(msgLine) + "\n")
	}

	m.cache[sess.Key] = sess
	return nil
}

// Delete removes a session from cache and disk.
func (m *Manager) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, cached := m.cache[key]
	delete(m.cache, key)

	if !m.persist {
		return cached
	}
	if err := os.Remove(m.sessionPath(key)); err != nil {
		return cached
	}
	return true
}

func (m *Manager) sessionPath(key string) string {
	safeKey := strings.ReplaceAll(key, ":", "_")
	// Strip path separators and traversal components to prevent path injection.
	safeKey = strings.ReplaceAll(safeKey, "/", "_")
	safeKey = strings.ReplaceAll(safeKey, "\\", "_")
	safeKey = strings.ReplaceAll(safeKey, "..", "_")
	return filepath.Join(m.sessionsDir, filepath.Base(safeKey)+".jsonl")
}

func (m *Manager) load(key string) *Session {
	file, err := os.Open(m.sessionPath(key))
	if err != nil {
		return nil
	}
	defer file.Close()

	sess := NewSession(key, m.maxHistory)
	decoder := json.NewDecoder(file)

	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			break
		}

		// Check if it's metadata
		var check map[string]any
		if json.Unmarshal(raw, &check) == nil {
			if check["_type"] == "metadata" {
				if created, ok := check["created_at"].(string); ok {
					sess.CreatedAt, _ = time.Parse(time.RFC3339, created)
				}
				if updated, ok := check["updated_at"].(string); ok {
					sess.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
				}
				continue
			}
		}

		// It's a message
		var msg Message
		if json.Unmarshal(raw, &msg) == nil {
			sess.Messages = append(sess.Messages, msg)
		}
	}

	// Re-apply the cap in case the cap shrank since the file was written.
	if sess.MaxHistory > 0 && len(sess.Messages) > sess.MaxHistory {
		sess.Messages = append(sess.Messages[:0:0], sess.Messages[len(sess.Messages)-sess.MaxHistory:]...)
	}

	return sess
}
