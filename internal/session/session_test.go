package session

import (
	"fmt"
	"testing"
)

func TestAddMessageFIFOEviction(t *testing.T) {
	sess := NewSession("test:fifo", 6)

	for i := 0; i < 10; i++ {
		sess.AddMessage("user", fmt.Sprintf("message %d", i))
	}

	if sess.Len() != 6 {
		t.Fatalf("expected history capped at 6, got %d", sess.Len())
	}
	history := sess.History(0)
	if history[0].Content != "message 4" {
		t.Errorf("expected oldest retained message to be 'message 4', got %q", history[0].Content)
	}
	if history[len(history)-1].Content != "message 9" {
		t.Errorf("expected newest message retained, got %q", history[len(history)-1].Content)
	}
}

func TestHistoryLimit(t *testing.T) {
	sess := NewSession("test:history", 0)
	for i := 0; i < 5; i++ {
		sess.AddMessage("user", fmt.Sprintf("m%d", i))
	}

	recent := sess.History(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(recent))
	}
	if recent[0].Content != "m3" || recent[1].Content != "m4" {
		t.Errorf("expected most recent two messages, got %v", recent)
	}

	all := sess.History(100)
	if len(all) != 5 {
		t.Errorf("expected all 5 messages, got %d", len(all))
	}
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(t.TempDir(), 10, false)

	a := m.GetOrCreate("chat:1")
	b := m.GetOrCreate("chat:1")
	if a != b {
		t.Error("expected same session instance for same key")
	}

	c := m.GetOrCreate("chat:2")
	if a == c {
		t.Error("expected distinct sessions for distinct keys")
	}
}

func TestManagerPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(dir, 10, true)
	sess := m.GetOrCreate("chat:persist")
	sess.AddMessage("user", "hello")
	sess.AddMessage("assistant", "hi there")
	if err := m.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Fresh manager over the same directory reads the file back.
	m2 := NewManager(dir, 10, true)
	loaded := m2.GetOrCreate("chat:persist")
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 messages after reload, got %d", loaded.Len())
	}
	history := loaded.History(0)
	if history[0].Content != "hello" || history[1].Content != "hi there" {
		t.Errorf("unexpected reloaded history: %v", history)
	}
}

func TestManagerDelete(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, 10, true)

	sess := m.GetOrCreate("chat:gone")
	sess.AddMessage("user", "x")
	if err := m.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !m.Delete("chat:gone") {
		t.Error("expected delete to succeed")
	}
	reloaded := m.GetOrCreate("chat:gone")
	if reloaded.Len() != 0 {
		t.Errorf("expected fresh session after delete, got %d messages", reloaded.Len())
	}
}

func TestSessionKeySanitization(t *testing.T) {
	m := NewManager(t.TempDir(), 10, true)
	sess := m.GetOrCreate("../../etc/passwd")
	sess.AddMessage("user", "x")
	if err := m.Save(sess); err != nil {
		t.Fatalf("Save with hostile key: %v", err)
	}
}
