package conversation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// charsPerToken is the token estimate used by the budget trimmer.
const charsPerToken = 4

// sessionDocument is the on-disk shape of one session.
type sessionDocument struct {
	SessionID    string    `json:"session_id"`
	Created      time.Time `json:"created"`
	LastActivity time.Time `json:"last_activity"`
	LastProvider string    `json:"last_provider"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Manager is the append-only per-session message log with persistence.
// Sessions live as one JSON document each under <root>/.mag/conversations/.
type Manager struct {
	dir          string
	sessionID    string
	created      time.Time
	lastActivity time.Time
	lastProvider string
	messages     []Message
}

// NewManager creates a manager storing sessions under workspaceRoot and
// starts a fresh session.
func NewManager(workspaceRoot string) *Manager {
	m := &Manager{dir: filepath.Join(workspaceRoot, ".mag", "conversations")}
	m.beginSession(generateSessionID(time.Now()))
	return m
}

// generateSessionID derives a session id from local wall clock.
func generateSessionID(now time.Time) string {
	return "session_" + now.Format("20060102_150405")
}

func (m *Manager) beginSession(id string) {
	now := time.Now()
	m.sessionID = id
	m.created = now
	m.lastActivity = now
	m.lastProvider = ""
	m.messages = nil
}

// SessionID returns the current session id.
func (m *Manager) SessionID() string { return m.sessionID }

// LastProvider returns the provider of the most recent assistant message.
func (m *Manager) LastProvider() string { return m.lastProvider }

// MessageCount returns the number of messages in the current session.
func (m *Manager) MessageCount() int { return len(m.messages) }

// IsEmpty reports whether the current session holds no messages.
func (m *Manager) IsEmpty() bool { return len(m.messages) == 0 }

// AddUserMessage appends a user turn.
func (m *Manager) AddUserMessage(content string) {
	m.append(Message{Role: RoleUser, Content: content})
}

// AddAssistantMessage appends an assistant turn tagged with the producing
// provider's internal name.
func (m *Manager) AddAssistantMessage(content, provider string) {
	m.append(Message{Role: RoleAssistant, Content: content, Provider: provider})
	m.lastProvider = provider
}

// AddSystemMessage appends a system turn.
func (m *Manager) AddSystemMessage(content string) {
	m.append(Message{Role: RoleSystem, Content: content})
}

func (m *Manager) append(msg Message) {
	now := time.Now()
	// Timestamps are non-decreasing within a session even if the clock
	// steps backwards.
	if len(m.messages) > 0 && now.Before(m.messages[len(m.messages)-1].Timestamp) {
		now = m.messages[len(m.messages)-1].Timestamp
	}
	msg.Timestamp = now
	m.messages = append(m.messages, msg)
	m.lastActivity = now
}

// History returns a copy of the full message sequence.
func (m *Manager) History() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// HistorySince returns the messages at or after the given time.
func (m *Manager) HistorySince(since time.Time) []Message {
	var out []Message
	for _, msg := range m.messages {
		if !msg.Timestamp.Before(since) {
			out = append(out, msg)
		}
	}
	return out
}

// TrimToLast keeps only the most recent n messages.
func (m *Manager) TrimToLast(n int) {
	if len(m.messages) > n {
		m.messages = append([]Message(nil), m.messages[len(m.messages)-n:]...)
	}
}

// TrimToTokenBudget drops the oldest messages until the estimated token
// count (content length / 4) fits within maxTokens, always preferring the
// most recent messages.
func (m *Manager) TrimToTokenBudget(maxTokens int) {
	tokens := 0
	keepFrom := len(m.messages)
	for i := len(m.messages) - 1; i >= 0; i-- {
		tokens += len(m.messages[i].Content) / charsPerToken
		if tokens > maxTokens {
			break
		}
		keepFrom = i
	}
	if keepFrom > 0 {
		m.messages = append([]Message(nil), m.messages[keepFrom:]...)
	}
}

// StartNewSession flushes the current session (when non-empty) and begins a
// fresh one with a wall-clock-derived id.
func (m *Manager) StartNewSession() error {
	if err := m.Save(); err != nil {
		return err
	}
	id := generateSessionID(time.Now())
	if id == m.sessionID {
		// Two sessions within one second; disambiguate to keep files apart.
		id += "_1"
	}
	m.beginSession(id)
	return nil
}

// Save writes the session as a single JSON document, atomically. Empty
// sessions are never persisted.
func (m *Manager) Save() error {
	if m.IsEmpty() {
		return nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}

	doc := sessionDocument{
		SessionID:    m.sessionID,
		Created:      m.created,
		LastActivity: m.lastActivity,
		LastProvider: m.lastProvider,
		MessageCount: len(m.messages),
		Messages:     m.messages,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(m.dir, ".session-*.json")
	if err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}
	if err := os.Rename(tmpName, m.sessionPath(m.sessionID)); err != nil {
		return &SaveError{SessionID: m.sessionID, Cause: err}
	}
	return nil
}

// LoadSession replaces the current session with the named one. The current
// session is flushed first when non-empty.
func (m *Manager) LoadSession(id string) error {
	data, err := os.ReadFile(m.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}

	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	if err := m.Save(); err != nil {
		return err
	}

	m.sessionID = id
	m.created = doc.Created
	m.lastActivity = doc.LastActivity
	m.lastProvider = doc.LastProvider
	m.messages = doc.Messages
	return nil
}

// Sessions enumerates stored session ids, newest first by file modification
// time.
func (m *Manager) Sessions() []string {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil
	}

	type stamped struct {
		id      string
		modTime time.Time
	}
	var found []stamped
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, stamped{id: strings.TrimSuffix(name, ".json"), modTime: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})

	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.id
	}
	return out
}

func (m *Manager) sessionPath(id string) string {
	return filepath.Join(m.dir, id+".json")
}
