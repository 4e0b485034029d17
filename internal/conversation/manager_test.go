package conversation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendOrderAndTimestamps(t *testing.T) {
	m := NewManager(t.TempDir())

	m.AddUserMessage("hello")
	m.AddAssistantMessage("hi there", "anthropic")
	m.AddSystemMessage("note")

	history := m.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant || history[2].Role != RoleSystem {
		t.Error("roles out of order")
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Error("timestamps must be non-decreasing")
		}
	}
	if history[1].Provider != "anthropic" {
		t.Errorf("assistant provider not recorded: %q", history[1].Provider)
	}
	if m.LastProvider() != "anthropic" {
		t.Errorf("LastProvider = %q", m.LastProvider())
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	m := NewManager(t.TempDir())
	m.AddUserMessage("original")

	h := m.History()
	h[0].Content = "mutated"

	if m.History()[0].Content != "original" {
		t.Error("History leaked internal state")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	m.AddUserMessage("question")
	m.AddAssistantMessage("answer", "openai")
	id := m.SessionID()

	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other := NewManager(root)
	if err := other.LoadSession(id); err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}

	loaded := other.History()
	orig := m.History()
	if len(loaded) != len(orig) {
		t.Fatalf("message count mismatch: %d vs %d", len(loaded), len(orig))
	}
	for i := range loaded {
		if loaded[i].Role != orig[i].Role || loaded[i].Content != orig[i].Content || loaded[i].Provider != orig[i].Provider {
			t.Errorf("message %d differs after round trip", i)
		}
	}
	if other.LastProvider() != "openai" {
		t.Errorf("last provider lost: %q", other.LastProvider())
	}
}

func TestEmptySessionNeverPersisted(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	if err := m.Save(); err != nil {
		t.Fatalf("Save of empty session errored: %v", err)
	}

	dir := filepath.Join(root, ".mag", "conversations")
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		t.Error("empty session was written to disk")
	}
}

func TestStartNewSessionFlushesPrevious(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	m.AddUserMessage("before switch")
	old := m.SessionID()

	if err := m.StartNewSession(); err != nil {
		t.Fatalf("StartNewSession failed: %v", err)
	}

	if m.SessionID() == old {
		t.Error("expected a fresh session id")
	}
	if !m.IsEmpty() {
		t.Error("new session should start empty")
	}

	if _, err := os.Stat(filepath.Join(root, ".mag", "conversations", old+".json")); err != nil {
		t.Errorf("previous session not flushed: %v", err)
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".mag", "conversations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	older := filepath.Join(dir, "session_20250101_000000.json")
	newer := filepath.Join(dir, "session_20250601_000000.json")
	for _, p := range []string{older, newer} {
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	sessions := NewManager(root).Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0] != "session_20250601_000000" {
		t.Errorf("expected newest first, got %v", sessions)
	}
}

func TestLoadMissingSession(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.LoadSession("session_19990101_000000"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestTrimToLast(t *testing.T) {
	m := NewManager(t.TempDir())
	for i := 0; i < 5; i++ {
		m.AddUserMessage(strings.Repeat("x", i+1))
	}

	m.TrimToLast(2)
	h := m.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(h))
	}
	if len(h[0].Content) != 4 || len(h[1].Content) != 5 {
		t.Error("TrimToLast did not keep the most recent messages")
	}
}

func TestTrimToTokenBudget(t *testing.T) {
	m := NewManager(t.TempDir())
	m.AddUserMessage(strings.Repeat("a", 400)) // ~100 tokens
	m.AddUserMessage(strings.Repeat("b", 400)) // ~100 tokens
	m.AddUserMessage(strings.Repeat("c", 400)) // ~100 tokens

	m.TrimToTokenBudget(200)
	h := m.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 messages within budget, got %d", len(h))
	}
	if h[0].Content[0] != 'b' || h[1].Content[0] != 'c' {
		t.Error("budget trim did not retain the most recent messages")
	}

	// A generous budget keeps everything.
	m2 := NewManager(t.TempDir())
	m2.AddUserMessage("short")
	m2.TrimToTokenBudget(1000)
	if len(m2.History()) != 1 {
		t.Error("trim removed messages under budget")
	}
}

func TestHistorySince(t *testing.T) {
	m := NewManager(t.TempDir())
	m.AddUserMessage("old")
	cut := time.Now()
	time.Sleep(2 * time.Millisecond)
	m.AddUserMessage("new")

	tail := m.HistorySince(cut)
	if len(tail) != 1 || tail[0].Content != "new" {
		t.Errorf("expected only the new message, got %v", tail)
	}
}
