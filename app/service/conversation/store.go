package conversation

import (
	"sync"

	"github.com/samber/do"
)

// Store is the conversation persistence boundary. The engine never assumes
// an in-memory singleton; any adapter honoring get-or-create/save/reset
// can back it. Callers guarantee no concurrent turns on the same id; the
// store only guards its own collection.
type Store interface {
	GetOrCreate(id string) *Conversation
	Save(conv *Conversation)
	Reset(id string) *Conversation
}

type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(_ *do.Injector) (*MemoryStore, error) {
	return &MemoryStore{
		conversations: map[string]*Conversation{},
	}, nil
}

func (s *MemoryStore) GetOrCreate(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[id]; ok {
		return conv
	}

	conv := newConversation(id)
	s.conversations[id] = conv

	return conv
}

func (s *MemoryStore) Save(conv *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.ID] = conv
}

func (s *MemoryStore) Reset(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := newConversation(id)
	s.conversations[id] = conv

	return conv
}
