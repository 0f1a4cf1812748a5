package post

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"morning-post/internal/domain/entity"
	"morning-post/internal/observability/metrics"
)

// idLength is the length of pending post identifiers. Eight hex characters
// keep callback payloads short while leaving collisions to the re-roll.
const idLength = 8

// Store holds pending posts awaiting an operator decision. It is
// process-wide and purely in-memory: a restart loses all drafts, which is
// an accepted limitation.
type Store struct {
	mu    sync.Mutex
	posts map[string]*entity.PendingPost
	now   func() time.Time
	newID func() string
}

// NewStore creates an empty pending post store.
func NewStore() *Store {
	return &Store{
		posts: make(map[string]*entity.PendingPost),
		now:   time.Now,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
		},
	}
}

// Create stores a new pending post built from the artifact and its delivery
// parts, returning a copy with the assigned id. Parts must be non-empty;
// single-part posts carry exactly one element.
func (s *Store) Create(artifact *entity.Artifact, parts []string) (*entity.PendingPost, error) {
	if artifact == nil {
		return nil, fmt.Errorf("%w: artifact must not be nil", entity.ErrInvalidInput)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: parts must not be empty", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for _, taken := s.posts[id]; taken; _, taken = s.posts[id] {
		id = s.newID()
	}

	p := &entity.PendingPost{
		ID:          id,
		Artifact:    artifact.Clone(),
		Parts:       append([]string(nil), parts...),
		IsMultiPart: len(parts) > 1,
		CreatedAt:   s.now(),
	}
	s.posts[id] = p
	metrics.UpdatePendingPosts(len(s.posts))

	return p.Clone(), nil
}

// Get returns a deep copy of the pending post, or entity.ErrNotFound.
func (s *Store) Get(id string) (*entity.PendingPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("pending post %s: %w", id, entity.ErrNotFound)
	}
	return p.Clone(), nil
}

// ReplaceText replaces the text of one part with operator-provided content.
// The text is trusted verbatim; no re-split happens. For single-part posts
// the rendered text is updated alongside the part.
func (s *Store) ReplaceText(id string, partIndex int, newText string) error {
	if newText == "" {
		return fmt.Errorf("%w: replacement text must not be empty", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("pending post %s: %w", id, entity.ErrNotFound)
	}
	if partIndex < 0 || partIndex >= len(p.Parts) {
		return fmt.Errorf("%w: part index %d out of range [0, %d)", entity.ErrInvalidInput, partIndex, len(p.Parts))
	}

	p.Parts[partIndex] = newText
	if !p.IsMultiPart {
		p.Artifact.RenderedText = newText
	}
	return nil
}

// Replace swaps the artifact and parts of an existing pending post in
// place, keeping its id. Used by regeneration so operator-held references
// to the id stay valid.
func (s *Store) Replace(id string, artifact *entity.Artifact, parts []string) error {
	if artifact == nil {
		return fmt.Errorf("%w: artifact must not be nil", entity.ErrInvalidInput)
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: parts must not be empty", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("pending post %s: %w", id, entity.ErrNotFound)
	}

	p.Artifact = artifact.Clone()
	p.Parts = append([]string(nil), parts...)
	p.IsMultiPart = len(parts) > 1
	return nil
}

// Delete removes a pending post. Returns entity.ErrNotFound for unknown ids.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("pending post %s: %w", id, entity.ErrNotFound)
	}
	delete(s.posts, id)
	metrics.UpdatePendingPosts(len(s.posts))
	return nil
}

// Len returns the number of stored pending posts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}
