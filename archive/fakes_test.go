package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// In-memory collaborator fakes shared by the handler and reconciler tests.

type fakeLedger struct {
	mu      sync.Mutex
	servers map[string]*Server
	users   map[string]string
	records map[string]VideoRecord // key: serverID/messageID
	order   []string               // message ids in insertion order

	serverErr error
	userErr   error
	insertErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		servers: make(map[string]*Server),
		users:   make(map[string]string),
		records: make(map[string]VideoRecord),
	}
}

func (l *fakeLedger) UpsertServerChannel(ctx context.Context, guildID, name, channelID, ownerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	srv, ok := l.servers[guildID]
	if !ok {
		srv = &Server{ID: int64(len(l.servers) + 1), GuildID: guildID}
		l.servers[guildID] = srv
	}
	srv.TargetChannelID = channelID
	srv.OwnerID = ownerID
	return nil
}

func (l *fakeLedger) ServerByGuild(ctx context.Context, guildID string) (*Server, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.serverErr != nil {
		return nil, l.serverErr
	}
	srv, ok := l.servers[guildID]
	if !ok {
		return nil, nil
	}
	cp := *srv
	return &cp, nil
}

func (l *fakeLedger) EnsureUser(ctx context.Context, userID, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.userErr != nil {
		return l.userErr
	}
	if _, ok := l.users[userID]; !ok {
		l.users[userID] = username
	}
	return nil
}

func (l *fakeLedger) InsertVideoIfAbsent(ctx context.Context, rec VideoRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.insertErr != nil {
		return false, l.insertErr
	}
	key := fmt.Sprintf("%d/%s", rec.ServerID, rec.MessageID)
	if _, ok := l.records[key]; ok {
		return false, nil
	}
	l.records[key] = rec
	l.order = append(l.order, rec.MessageID)
	return true, nil
}

type fakeStager struct {
	dir     string
	failFor map[string]error // url -> error
}

func (s *fakeStager) Stage(ctx context.Context, url, filename string) (string, error) {
	if err, ok := s.failFor[url]; ok {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeArchiver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *fakeArchiver) Archive(ctx context.Context, localPath, key, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", fmt.Errorf("staged file missing at archive time: %w", err)
	}
	a.mu.Lock()
	a.keys = append(a.keys, key)
	a.mu.Unlock()
	return "https://cdn.example.com/" + key, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	replies []string
	says    []string
	reacts  []string // message ids
}

func (n *fakeNotifier) Reply(ctx context.Context, channelID, messageID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replies = append(n.replies, text)
	return nil
}

func (n *fakeNotifier) Say(ctx context.Context, channelID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.says = append(n.says, text)
	return nil
}

func (n *fakeNotifier) React(ctx context.Context, channelID, messageID, emoji string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reacts = append(n.reacts, messageID)
	return nil
}

// fakeHistory serves pages from a newest-first message list, mimicking the
// platform's "before" cursor semantics.
type fakeHistory struct {
	msgs       []Message // newest first
	calls      int
	failOnCall int // 1-based; 0 disables
}

func (h *fakeHistory) FetchPage(ctx context.Context, channelID string, limit int, beforeID string) ([]Message, error) {
	h.calls++
	if h.failOnCall > 0 && h.calls >= h.failOnCall {
		return nil, errors.New("history fetch boom")
	}
	start := 0
	if beforeID != "" {
		for i, m := range h.msgs {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	if start >= len(h.msgs) {
		return nil, nil
	}
	end := start + limit
	if end > len(h.msgs) {
		end = len(h.msgs)
	}
	page := make([]Message, end-start)
	copy(page, h.msgs[start:end])
	return page, nil
}

type fakeOwners struct {
	owner string
	err   error
}

func (o *fakeOwners) Owner(ctx context.Context, guildID string) (string, error) {
	return o.owner, o.err
}

// videoMsg builds an eligible message carrying one video attachment.
func videoMsg(id, guildID, channelID, authorID, content string, ts time.Time) Message {
	return Message{
		ID:         id,
		GuildID:    guildID,
		ChannelID:  channelID,
		AuthorID:   authorID,
		AuthorTag:  "user#" + authorID,
		AuthorName: "user" + authorID,
		Content:    content,
		Timestamp:  ts,
		Attachments: []Attachment{{
			URL:         "https://media.example.com/" + id + ".mp4",
			Filename:    id + ".mp4",
			ContentType: "video/mp4",
		}},
	}
}

// dirEntries returns the names currently present in dir ("" for a missing dir).
func dirEntries(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
