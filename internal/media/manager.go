package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/google/uuid"
)

// Manager keeps one ordered, uniquely keyed media collection. It is not safe
// for concurrent use; the owning session serialises access.
type Manager struct {
	policy   Policy
	blobs    *Blobs
	items    []Item
	dragging string
	newID    func() string
}

// NewManager builds an empty collection governed by policy. Transient
// references are registered in blobs.
func NewManager(policy Policy, blobs *Blobs) (*Manager, error) {
	if !policy.Kind.IsValid() {
		return nil, fmt.Errorf("invalid media kind %q", policy.Kind)
	}
	if policy.MaxItems <= 0 {
		return nil, fmt.Errorf("%s: max items must be positive", policy.Kind)
	}
	if blobs == nil {
		blobs = NewBlobs()
	}
	return &Manager{
		policy: policy,
		blobs:  blobs,
		newID:  uuid.NewString,
	}, nil
}

func (m *Manager) Policy() Policy {
	return m.policy
}

// Items returns a copy of the collection in display order.
func (m *Manager) Items() []Item {
	return append([]Item(nil), m.items...)
}

func (m *Manager) Len() int {
	return len(m.items)
}

// Dragging returns the id of the item being dragged, or "".
func (m *Manager) Dragging() string {
	return m.dragging
}

// Reset replaces the collection with items loaded from a data source.
// Duplicate ids keep their first occurrence and the list is cut at the
// ceiling. Transient references no longer present are released.
func (m *Manager) Reset(items []Item) {
	next := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		if len(next) >= m.policy.MaxItems {
			break
		}
		seen[item.ID] = struct{}{}
		next = append(next, item)
	}
	for _, old := range m.items {
		if _, kept := seen[old.ID]; !kept {
			m.release(old)
		}
	}
	m.items = next
	m.dragging = ""
}

// Add validates uploads in input order and appends the accepted ones. The
// ceiling is checked against everything accepted so far, so later files in
// a batch are rejected once it is reached. The returned notification
// summarises the batch; it is zero when uploads is empty.
func (m *Manager) Add(uploads []Upload) (AddResult, notifications.Notification) {
	source := m.policy.Kind.String()
	result := AddResult{}
	if len(uploads) == 0 {
		return result, notifications.Notification{}
	}
	if !m.policy.Kind.AcceptsUploads() {
		for _, up := range uploads {
			result.Rejected = append(result.Rejected, Rejection{Name: up.Name, Reason: ReasonInvalidType, Message: "unsupported upload"})
		}
		return result, notifications.Error(source, fmt.Sprintf("%s does not accept file uploads", source))
	}

	for _, up := range uploads {
		item, rejection := m.validate(up)
		if rejection != nil {
			result.Rejected = append(result.Rejected, *rejection)
			continue
		}
		item.ID = m.newID()
		item.URL = m.blobs.Put(up.Data, item.MIMEType)
		item.Transient = true
		m.items = append(m.items, item)
		result.Added = append(result.Added, item)
	}

	if len(result.Added) > 0 {
		note := notifications.Success(source, fmt.Sprintf(m.policy.Messages.Added, len(result.Added)))
		if len(result.Rejected) > 0 {
			note = note.WithDetails(result.Rejected)
		}
		return result, note
	}
	return result, notifications.Info(source, m.policy.Messages.NoneAdded).WithDetails(result.Rejected)
}

func (m *Manager) validate(up Upload) (Item, *Rejection) {
	reject := func(reason Reason, format string) (Item, *Rejection) {
		msg := format
		if strings.Contains(format, "%s") {
			msg = fmt.Sprintf(format, up.Name)
		}
		return Item{}, &Rejection{Name: up.Name, Reason: reason, Message: msg}
	}

	if len(m.items) >= m.policy.MaxItems {
		return reject(ReasonLimitReached, m.policy.Messages.LimitReached)
	}
	mimeType, ok := resolveMIME(up.ContentType, up.Data, m.policy.AllowedMIME)
	if !ok {
		return reject(ReasonInvalidType, m.policy.Messages.InvalidType)
	}
	size := int64(len(up.Data))
	if m.policy.MaxBytes > 0 && size > m.policy.MaxBytes {
		return reject(ReasonTooLarge, m.policy.Messages.TooLarge)
	}

	item := Item{Name: up.Name, MIMEType: mimeType, Size: size}
	if m.policy.Width > 0 || m.policy.Height > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
		if err != nil {
			return reject(ReasonUnreadable, m.policy.Messages.Unreadable)
		}
		if cfg.Width != m.policy.Width || cfg.Height != m.policy.Height {
			return reject(ReasonWrongDimensions, m.policy.Messages.WrongDimensions)
		}
		item.Width, item.Height = cfg.Width, cfg.Height
	}
	return item, nil
}

// AddURL appends a link-based item (videos). It returns the added item, or
// nil when the link was refused, together with the notification to show.
func (m *Manager) AddURL(raw string) (*Item, notifications.Notification) {
	source := m.policy.Kind.String()
	msgs := m.policy.Messages
	if m.policy.Kind.AcceptsUploads() {
		return nil, notifications.Error(source, fmt.Sprintf("%s only accepts file uploads", source))
	}
	if strings.TrimSpace(raw) == "" {
		return nil, notifications.Warning(source, msgs.EmptyURL)
	}
	item := VideoItem(m.newID(), raw)
	if item.VideoID == "" {
		return nil, notifications.Error(source, msgs.InvalidURL)
	}
	if len(m.items) >= m.policy.MaxItems {
		return nil, notifications.Warning(source, msgs.LimitReached)
	}
	if m.policy.Key != nil {
		key := m.policy.Key(item)
		for _, existing := range m.items {
			if m.policy.Key(existing) == key {
				return nil, notifications.Info(source, msgs.Duplicate)
			}
		}
	}
	m.items = append(m.items, item)
	return &item, notifications.Success(source, msgs.Added)
}

// Remove deletes the item with id and releases its transient reference.
// Unknown ids are a no-op and yield a zero notification.
func (m *Manager) Remove(id string) (bool, notifications.Notification) {
	idx := m.indexOf(id)
	if idx < 0 {
		return false, notifications.Notification{}
	}
	removed := m.items[idx]
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	m.release(removed)
	if m.dragging == id {
		m.dragging = ""
	}
	return true, notifications.Info(m.policy.Kind.String(), m.policy.Messages.Removed)
}

// Reorder moves fromID to the position currently held by toID, keeping the
// relative order of every other item.
func (m *Manager) Reorder(fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	from, to := m.indexOf(fromID), m.indexOf(toID)
	if from < 0 || to < 0 {
		return false
	}
	moved := m.items[from]
	rest := make([]Item, 0, len(m.items))
	rest = append(rest, m.items[:from]...)
	rest = append(rest, m.items[from+1:]...)

	out := make([]Item, 0, len(m.items))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	m.items = out
	return true
}

// DragStart records id as the dragged item. Unknown ids are ignored.
func (m *Manager) DragStart(id string) bool {
	if m.indexOf(id) < 0 {
		return false
	}
	m.dragging = id
	return true
}

// DragCancel clears the dragged item.
func (m *Manager) DragCancel() {
	m.dragging = ""
}

// DragEnd drops the dragged item onto toID and clears the drag state.
func (m *Manager) DragEnd(toID string) bool {
	from := m.dragging
	m.dragging = ""
	if from == "" {
		return false
	}
	return m.Reorder(from, toID)
}

// Release frees every transient reference held by the collection and empties it.
func (m *Manager) Release() {
	for _, item := range m.items {
		m.release(item)
	}
	m.items = nil
	m.dragging = ""
}

func (m *Manager) release(item Item) {
	if item.Transient || IsBlobRef(item.URL) {
		m.blobs.Release(item.URL)
	}
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range m.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
