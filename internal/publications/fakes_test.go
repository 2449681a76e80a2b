package publications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/internal/publications"
	"github.com/JaimeStill/quire/pkg/lifecycle"
	"github.com/JaimeStill/quire/pkg/pagination"
	"github.com/JaimeStill/quire/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// blobStore is an in-memory storage.System with injectable failures.
type blobStore struct {
	mu        sync.Mutex
	blobs     map[string]string
	uploadErr func(contentType string) error
	deleteErr func(key string) error
	deletes   []string
}

func newBlobStore() *blobStore {
	return &blobStore{blobs: make(map[string]string)}
}

func (b *blobStore) Start(lc *lifecycle.Coordinator) error { return nil }

func (b *blobStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if b.uploadErr != nil {
		if err := b.uploadErr(contentType); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = contentType
	return nil
}

func (b *blobStore) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	if b.deleteErr != nil {
		if err := b.deleteErr(key); err != nil {
			return err
		}
	}
	if _, ok := b.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(b.blobs, key)
	return nil
}

func (b *blobStore) URL(key string) string { return "https://blobs.test/" + key }

func (b *blobStore) SignUpload(ctx context.Context, ttl time.Duration) (*storage.Signature, error) {
	return &storage.Signature{URL: "https://blobs.test/?sig", ExpiresAt: time.Now().Add(ttl)}, nil
}

func (b *blobStore) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}

func (b *blobStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// recordStore is an in-memory publications.Store.
type recordStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]publications.Publication
	insertErr error
	updateErr error
	cleared   []publications.Slot
	now       time.Time
}

func newRecordStore() *recordStore {
	return &recordStore{
		records: make(map[uuid.UUID]publications.Publication),
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *recordStore) put(p publications.Publication) publications.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.now = s.now.Add(time.Minute)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now
	}
	p.UpdatedAt = s.now
	s.records[p.ID] = p
	return p
}

func (s *recordStore) List(ctx context.Context, page pagination.PageRequest, f publications.Filters) (*pagination.PageResult[publications.Publication], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []publications.Publication
	for _, p := range s.records {
		if !p.IsPublished {
			continue
		}
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Search != nil && *f.Search != "" && !matches(p, *f.Search) {
			continue
		}
		matched = append(matched, p)
	}
	slices.SortFunc(matched, func(a, b publications.Publication) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.Limit)
	return &result, nil
}

func matches(p publications.Publication, search string) bool {
	search = strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Title), search) || strings.Contains(strings.ToLower(p.Description), search) {
		return true
	}
	for _, a := range p.Authors {
		if strings.Contains(strings.ToLower(a), search) {
			return true
		}
	}
	return false
}

func (s *recordStore) Recent(ctx context.Context, n int) ([]publications.Publication, error) {
	page, _ := s.List(ctx, pagination.PageRequest{Page: 1, Limit: n}, publications.Filters{})
	return page.Data, nil
}

func (s *recordStore) Stats(ctx context.Context) (publications.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st publications.Stats
	for _, p := range s.records {
		st.Total++
		st.Downloads += p.DownloadCount
	}
	return st, nil
}

func (s *recordStore) Find(ctx context.Context, id uuid.UUID) (*publications.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return nil, publications.ErrNotFound
	}
	return &p, nil
}

func (s *recordStore) Increment(ctx context.Context, id uuid.UUID) (*publications.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return nil, publications.ErrNotFound
	}
	p.DownloadCount++
	s.records[id] = p
	return &p, nil
}

func (s *recordStore) Insert(ctx context.Context, p *publications.Publication) (*publications.Publication, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := s.put(*p)
	return &out, nil
}

func (s *recordStore) Update(ctx context.Context, p *publications.Publication) (*publications.Publication, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if _, err := s.Find(ctx, p.ID); err != nil {
		return nil, err
	}
	out := s.put(*p)
	return &out, nil
}

func (s *recordStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return publications.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *recordStore) Clear(ctx context.Context, id uuid.UUID, slot publications.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return publications.ErrNotFound
	}
	p.Clear(slot)
	s.records[id] = p
	s.cleared = append(s.cleared, slot)
	return nil
}

func (s *recordStore) Scrub(ctx context.Context, publicID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.records {
		changed := false
		for _, slot := range []publications.Slot{publications.SlotFile, publications.SlotThumbnail} {
			if ref := p.PublicID(slot); ref != nil && *ref == publicID {
				p.Clear(slot)
				changed = true
			}
		}
		if changed {
			s.records[id] = p
			n++
		}
	}
	return n, nil
}

func (s *recordStore) get(id uuid.UUID) publications.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

type fixture struct {
	blobs   *blobStore
	records *recordStore
	sys     publications.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &media.Config{MaxFileSize: "1KB"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("media config: %v", err)
	}

	blobs := newBlobStore()
	records := newRecordStore()
	files := media.New(blobs, cfg, discardLogger())

	return &fixture{
		blobs:   blobs,
		records: records,
		sys: publications.New(records, files, discardLogger(), pagination.Config{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		}),
	}
}

func ptr[T any](v T) *T { return &v }

func validFields() publications.Fields {
	return publications.Fields{
		Title:       ptr("Distributed Systems"),
		Description: ptr("A study of consensus."),
		Authors:     ptr([]string{"Ada Lovelace"}),
		PublishDate: ptr("2024-05-01"),
		Publisher:   ptr("Quire Press"),
		Category:    ptr("research"),
	}
}

func docUpload() *media.Upload {
	return &media.Upload{Filename: "paper.doc", ContentType: "application/msword", Data: []byte("doc")}
}

func pngUpload() *media.Upload {
	return &media.Upload{Filename: "cover.png", ContentType: "image/png", Data: []byte("png")}
}

var errRemote = errors.New("remote unavailable")
