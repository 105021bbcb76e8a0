// Package window maintains the per-channel message windows: a bounded,
// newest-first slice of a channel's history with bidirectional pagination,
// batch eviction and scroll-aware read receipts. Authors are kept in a
// shared display cache keyed by user ID, evicted only explicitly.
package window

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chatapp-client/internal/models"
	"chatapp-client/internal/rest"

	"go.uber.org/zap"
)

type Direction string

const (
	Before Direction = "before"
	After  Direction = "after"
)

const (
	// Capacity is the maximum number of messages held per channel; Trim
	// evicts this many at once from the end not being extended.
	Capacity  = 100
	TrimBatch = 50

	// RecentThreshold groups consecutive messages of the same author.
	RecentThreshold = 30 * time.Second

	// ReadScrollThreshold gates read receipts: the user must be within
	// this many units of the newest message for a read to register.
	ReadScrollThreshold = 3000.0

	DefaultRowHeight = 50.0
)

// Fetcher is the slice of the request layer the windows need.
type Fetcher interface {
	Messages(ctx context.Context, serverID string, channelID string, q rest.MessagesQuery) ([]models.Message, *rest.APIError)
}

// EntityWriter lets the windows commit read/sent markers onto the owning
// Channel or Friend entity without holding a reference to the whole cache.
type EntityWriter interface {
	SetLastMessageSent(serverID string, channelID string, messageID string) bool
	SetLastMessageRead(serverID string, channelID string, messageID string) bool
}

// Window is one channel's materialized slice of history, newest first.
type Window struct {
	Messages        []models.Message
	BeforeMessageID string
	AfterMessageID  string
	HasReachedEnd   bool
	ScrollHeight    float64
	ScrollY         float64
}

type Windows struct {
	sugar     *zap.SugaredLogger
	fetcher   Fetcher
	entities  EntityWriter
	rowHeight float64

	mu      sync.Mutex
	windows map[string]*Window
	authors map[string]*models.Author
	loading map[string]struct{}
}

func New(sugar *zap.SugaredLogger, fetcher Fetcher, rowHeight float64) *Windows {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}

	return &Windows{
		sugar:     sugar,
		fetcher:   fetcher,
		rowHeight: rowHeight,
		windows:   make(map[string]*Window),
		authors:   make(map[string]*models.Author),
		loading:   make(map[string]struct{}),
	}
}

// Bind attaches the entity writer after construction, the cache and the
// windows reference each other.
func (ws *Windows) Bind(entities EntityWriter) {
	ws.entities = entities
}

func (ws *Windows) Get(channelID string) (*Window, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	return w, exists
}

func (ws *Windows) Has(channelID string) bool {
	_, exists := ws.Get(channelID)
	return exists
}

func (ws *Windows) ensure(channelID string) *Window {
	w, exists := ws.windows[channelID]
	if !exists {
		w = &Window{Messages: []models.Message{}}
		ws.windows[channelID] = w
	}
	return w
}

// Clear evicts a channel's window. Used when the user navigates away or the
// owning channel/category/server disappears.
func (ws *Windows) Clear(channelID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	delete(ws.windows, channelID)
}

// SetScroll records the view state used by read-receipt gating and trim
// compensation.
func (ws *Windows) SetScroll(channelID string, scrollHeight float64, scrollY float64) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	if !exists {
		return
	}
	w.ScrollHeight = scrollHeight
	w.ScrollY = scrollY
}

// LoadMore extends the window in the given direction through the request
// layer. It returns false when there is nothing to merge: exhausted history,
// an empty page, a superseded request or any transport failure. Overlapping
// calls for the same channel and direction are coalesced into one.
func (ws *Windows) LoadMore(ctx context.Context, serverID string, channelID string, direction Direction) bool {
	loadKey := channelID + "|" + string(direction)

	ws.mu.Lock()
	if _, busy := ws.loading[loadKey]; busy {
		ws.mu.Unlock()
		ws.sugar.Debugf("Pagination for channel ID [%s] direction [%s] already in flight", channelID, direction)
		return false
	}

	w := ws.ensure(channelID)
	if direction == Before && w.HasReachedEnd {
		ws.mu.Unlock()
		return false
	}

	query := rest.MessagesQuery{}
	if direction == Before {
		query.BeforeMessageID = w.BeforeMessageID
	} else {
		query.AfterMessageID = w.AfterMessageID
	}

	ws.loading[loadKey] = struct{}{}
	ws.mu.Unlock()

	messages, apiErr := ws.fetcher.Messages(ctx, serverID, channelID, query)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.loading, loadKey)

	if apiErr != nil {
		if apiErr.Aborted() {
			ws.sugar.Debugf("Pagination for channel ID [%s] was superseded", channelID)
		} else {
			ws.sugar.Warnf("Pagination for channel ID [%s] failed: %v", channelID, apiErr)
		}
		return false
	}

	// the window may have been evicted while the fetch was in flight
	w, exists := ws.windows[channelID]
	if !exists {
		return false
	}

	if len(messages) == 0 {
		if direction == Before {
			w.HasReachedEnd = true
		}
		return false
	}

	if direction == Before {
		w.Messages = append(w.Messages, messages...)
	} else {
		w.Messages = append(messages, w.Messages...)
	}

	ws.trim(w, direction)

	w.BeforeMessageID = w.Messages[len(w.Messages)-1].ID
	w.AfterMessageID = w.Messages[0].ID

	for i := range messages {
		ws.setAuthor(messages[i].Author)
	}

	return true
}

// trim runs after a merge and evicts TrimBatch-sized blocks from the end
// opposite to the one just extended until the window fits, compensating
// ScrollHeight so the view can keep its position. Trimming the merged list
// keeps the capacity bound even when a fetched page is larger than a batch.
func (ws *Windows) trim(w *Window, direction Direction) {
	removed := 0
	for len(w.Messages) > Capacity {
		if direction == Before {
			// extending the old end, drop the newest block
			w.Messages = w.Messages[TrimBatch:]
		} else {
			w.Messages = w.Messages[:len(w.Messages)-TrimBatch]
		}
		removed += TrimBatch
	}

	if removed > 0 {
		w.ScrollHeight += float64(removed) * ws.rowHeight
	}
}

// Append inserts a freshly arrived message at the newest end. A window is
// only materialized for it when the channel is the active view, otherwise
// the message stays server-side until the channel is opened.
func (ws *Windows) Append(msg models.Message, isActiveView bool) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[msg.ChannelID]
	if !exists {
		if !isActiveView {
			return false
		}
		w = ws.ensure(msg.ChannelID)
	}

	w.Messages = append([]models.Message{msg}, w.Messages...)
	ws.trim(w, After)

	w.AfterMessageID = msg.ID
	w.BeforeMessageID = w.Messages[len(w.Messages)-1].ID

	ws.setAuthor(msg.Author)
	return true
}

func (ws *Windows) DeleteMessage(channelID string, messageID string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	if !exists {
		return false
	}

	for i := range w.Messages {
		if w.Messages[i].ID == messageID {
			w.Messages = append(w.Messages[:i], w.Messages[i+1:]...)
			resetCursors(w)
			return true
		}
	}
	return false
}

// resetCursors recomputes the pagination cursors from the extremities. An
// emptied window drops its cursors so the next fetch starts from the newest
// page instead of a removed message ID.
func resetCursors(w *Window) {
	if len(w.Messages) == 0 {
		w.AfterMessageID = ""
		w.BeforeMessageID = ""
		return
	}
	w.AfterMessageID = w.Messages[0].ID
	w.BeforeMessageID = w.Messages[len(w.Messages)-1].ID
}

// Edit carries the partial fields of an edited message.
type Edit struct {
	ID               string
	Content          json.RawMessage
	Everyone         bool
	MentionsUsers    []string
	MentionsChannels []string
	UpdatedAt        time.Time
}

// EditMessage merges the partial fields into the held message, a no-op when
// the message is not in the window.
func (ws *Windows) EditMessage(channelID string, edit Edit) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	if !exists {
		return false
	}

	for i := range w.Messages {
		if w.Messages[i].ID == edit.ID {
			msg := &w.Messages[i]
			if edit.Content != nil {
				msg.Content = edit.Content
			}
			msg.Everyone = edit.Everyone
			if edit.MentionsUsers != nil {
				msg.MentionsUsers = edit.MentionsUsers
			}
			if edit.MentionsChannels != nil {
				msg.MentionsChannels = edit.MentionsChannels
			}
			if !edit.UpdatedAt.IsZero() {
				msg.UpdatedAt = edit.UpdatedAt
			}
			return true
		}
	}
	return false
}

// MessageIsRecent reports whether the message directly continues its
// predecessor: same author, less than RecentThreshold apart. The window is
// newest-first, so the predecessor in display order is the next index.
func (ws *Windows) MessageIsRecent(channelID string, messageID string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	if !exists {
		return false
	}

	for i := range w.Messages {
		if w.Messages[i].ID != messageID {
			continue
		}
		if i+1 >= len(w.Messages) {
			return false
		}

		msg, older := w.Messages[i], w.Messages[i+1]
		if msg.Author.ID != older.Author.ID {
			return false
		}
		return msg.CreatedAt.Sub(older.CreatedAt) < RecentThreshold
	}

	return false
}

// SetLastMessageSent marks the newest held message as the channel's last
// sent message.
func (ws *Windows) SetLastMessageSent(serverID string, channelID string) bool {
	ws.mu.Lock()
	newest := ""
	if w, exists := ws.windows[channelID]; exists {
		newest = w.AfterMessageID
	}
	ws.mu.Unlock()

	if newest == "" || ws.entities == nil {
		return false
	}
	return ws.entities.SetLastMessageSent(serverID, channelID, newest)
}

// SetLastMessageRead commits a read receipt for the newest held message,
// but only while the view sits near the newest end. A message arriving while
// the user is scrolled up reading history must not mark itself read.
func (ws *Windows) SetLastMessageRead(serverID string, channelID string) bool {
	ws.mu.Lock()
	newest := ""
	if w, exists := ws.windows[channelID]; exists && w.ScrollY <= ReadScrollThreshold {
		newest = w.AfterMessageID
	}
	ws.mu.Unlock()

	if newest == "" || ws.entities == nil {
		return false
	}
	return ws.entities.SetLastMessageRead(serverID, channelID, newest)
}

// DeleteAllFromAuthor purges one author's messages from a channel's window,
// returning how many were removed.
func (ws *Windows) DeleteAllFromAuthor(channelID string, authorID string) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	w, exists := ws.windows[channelID]
	if !exists {
		return 0
	}

	kept := w.Messages[:0]
	removed := 0
	for i := range w.Messages {
		if w.Messages[i].Author.ID == authorID {
			removed++
			continue
		}
		kept = append(kept, w.Messages[i])
	}
	w.Messages = kept
	resetCursors(w)

	return removed
}

func (ws *Windows) setAuthor(author models.Author) {
	if author.ID == "" {
		return
	}

	cached, exists := ws.authors[author.ID]
	if !exists {
		copied := author
		ws.authors[author.ID] = &copied
		return
	}

	cached.Avatar = author.Avatar
	cached.DisplayName = author.DisplayName
	if len(author.Roles) > 0 {
		cached.Roles = author.Roles
	}
}

func (ws *Windows) SetAuthor(author models.Author) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.setAuthor(author)
}

func (ws *Windows) Author(userID string) (*models.Author, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	author, exists := ws.authors[userID]
	return author, exists
}

// RemoveAuthor evicts an author from the display cache. Only explicit
// removals (ban, kick, account deletion) call this.
func (ws *Windows) RemoveAuthor(userID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	delete(ws.authors, userID)
}
