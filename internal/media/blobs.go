package media

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const blobScheme = "blob:"

// Blob is the content behind a transient reference.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Blobs holds the content of uploads that have not been persisted yet. Every
// reference it hands out must eventually be released.
type Blobs struct {
	mu    sync.RWMutex
	items map[string]Blob
}

func NewBlobs() *Blobs {
	return &Blobs{items: make(map[string]Blob)}
}

// Put stores data and returns its reference.
func (b *Blobs) Put(data []byte, mimeType string) string {
	ref := blobScheme + uuid.NewString()
	b.mu.Lock()
	b.items[ref] = Blob{MIMEType: mimeType, Data: data}
	b.mu.Unlock()
	return ref
}

// Get returns the blob behind ref.
func (b *Blobs) Get(ref string) (Blob, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	blob, ok := b.items[ref]
	return blob, ok
}

// Release frees ref. Unknown references are ignored.
func (b *Blobs) Release(ref string) {
	b.mu.Lock()
	delete(b.items, ref)
	b.mu.Unlock()
}

// Len reports the number of live references.
func (b *Blobs) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// IsBlobRef reports whether url is a transient reference.
func IsBlobRef(url string) bool {
	return strings.HasPrefix(url, blobScheme)
}
