package inmemory

import (
	"sync"
	"time"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// Store реализует все репозитории в памяти.
// Пост и его детали меняются под одной блокировкой, поэтому агрегат всегда целостен.
type Store struct {
	mu             sync.RWMutex
	posts          map[string]*domain.PostCore
	details        map[domain.PostType]map[string]any // map[postType]map[postID]detail
	comments       map[string]*domain.Comment
	commentsByPost map[string][]string // map[postID][]commentID
	last           time.Time
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	s := &Store{
		posts:          make(map[string]*domain.PostCore),
		details:        make(map[domain.PostType]map[string]any, len(domain.PostTypes)),
		comments:       make(map[string]*domain.Comment),
		commentsByPost: make(map[string][]string),
	}
	for _, t := range domain.PostTypes {
		s.details[t] = make(map[string]any)
	}
	return s
}

// Repositories возвращает набор репозиториев поверх этого хранилища.
func (s *Store) Repositories() storage.Repositories {
	return storage.Repositories{
		Posts:    &postRepository{s: s},
		Links:    newTypedRepository(s, domain.PostTypeLink, storage.ConvertToLinkPost),
		Photos:   newTypedRepository(s, domain.PostTypePhoto, storage.ConvertToPhotoPost),
		Quotes:   newTypedRepository(s, domain.PostTypeQuote, storage.ConvertToQuotePost),
		Texts:    newTypedRepository(s, domain.PostTypeText, storage.ConvertToTextPost),
		Videos:   newTypedRepository(s, domain.PostTypeVideo, storage.ConvertToVideoPost),
		Search:   &searchRepository{s: s},
		Comments: &commentRepository{s: s},
	}
}

// tick возвращает строго возрастающее время, чтобы сортировка по дате была однозначной.
// Вызывать под s.mu.Lock.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

// rowLocked собирает соединенную строку поста со всеми существующими деталями.
func (s *Store) rowLocked(id string) *storage.PostRow {
	core, ok := s.posts[id]
	if !ok {
		return nil
	}
	row := &storage.PostRow{PostCore: core.Clone()}
	for _, t := range domain.PostTypes {
		if d, ok := s.details[t][id]; ok {
			row.Attach(d)
		}
	}
	return row
}
