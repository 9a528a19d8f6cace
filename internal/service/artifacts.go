package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync"

	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/logger"
	"github.com/timmy/portrait/internal/provenance"
	"github.com/timmy/portrait/internal/storage"
)

// Artifact file names under each generation's key prefix.
const (
	ArtifactPortrait    = "portrait.html"
	ArtifactCertificate = "certificate.txt"
	ArtifactProvenance  = "provenance.json"
)

var (
	// ErrArtifactNotFound is returned for generation numbers with no artifact.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrArtifactExists is returned by Save when storage already holds the number.
	ErrArtifactExists = errors.New("artifact already stored")
)

// Artifact is the downloadable output of one numbered generation.
type Artifact struct {
	Number     int64
	Document   string
	Provenance *domain.ProvenanceRecord
}

// Certificate renders the text certificate.
func (a *Artifact) Certificate() string {
	return provenance.Certificate(a.Provenance, a.Number)
}

// ArtifactService keeps recent artifacts in memory and, when object storage
// is configured, persists every artifact under <prefix>/<number>/.
type ArtifactService struct {
	store    storage.ObjectStorage
	prefix   string
	capacity int

	mu    sync.Mutex
	cache map[int64]*Artifact
	order []int64
}

// NewArtifactService creates the service. store may be nil.
func NewArtifactService(store storage.ObjectStorage, prefix string, capacity int) *ArtifactService {
	if capacity <= 0 {
		capacity = 100
	}
	return &ArtifactService{
		store:    store,
		prefix:   prefix,
		capacity: capacity,
		cache:    make(map[int64]*Artifact),
	}
}

// Key returns the storage key of one artifact file.
func (s *ArtifactService) Key(number int64, name string) string {
	return path.Join(s.prefix, strconv.FormatInt(number, 10), name)
}

// Save caches a and uploads it when storage is configured. Stored artifacts
// are never overwritten.
// Returns:
//   - string: public URL of the portrait, or "" when none exists.
//   - error: ErrArtifactExists when the number is already stored (a is not
//     cached), or the upload error (a stays cached).
func (s *ArtifactService) Save(ctx context.Context, a *Artifact) (string, error) {
	if s.store == nil {
		s.remember(a)
		return "", nil
	}

	portraitKey := s.Key(a.Number, ArtifactPortrait)
	exists, err := s.store.Exists(ctx, portraitKey)
	if err != nil {
		s.remember(a)
		return "", fmt.Errorf("check %s: %w", portraitKey, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrArtifactExists, portraitKey)
	}
	s.remember(a)

	prov, err := json.MarshalIndent(a.Provenance, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal provenance: %w", err)
	}

	files := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{ArtifactPortrait, []byte(a.Document), "text/html; charset=utf-8"},
		{ArtifactCertificate, []byte(a.Certificate()), "text/plain; charset=utf-8"},
		{ArtifactProvenance, prov, "application/json"},
	}
	for _, f := range files {
		key := s.Key(a.Number, f.name)
		if err := s.store.Upload(ctx, key, bytes.NewReader(f.data), int64(len(f.data)), f.contentType); err != nil {
			return "", fmt.Errorf("upload %s: %w", key, err)
		}
	}

	logger.With(logger.Fields{logger.FieldGeneration: a.Number}).WithCount(len(files)).Debug(ctx, "Artifacts uploaded")
	return s.store.GetURL(portraitKey), nil
}

// Get returns the artifact for number from memory or storage.
func (s *ArtifactService) Get(ctx context.Context, number int64) (*Artifact, error) {
	s.mu.Lock()
	a, ok := s.cache[number]
	s.mu.Unlock()
	if ok {
		return a, nil
	}
	if s.store == nil {
		return nil, ErrArtifactNotFound
	}

	doc, err := s.download(ctx, s.Key(number, ArtifactPortrait))
	if err != nil {
		return nil, err
	}
	data, err := s.download(ctx, s.Key(number, ArtifactProvenance))
	if err != nil {
		return nil, err
	}
	var rec domain.ProvenanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode provenance: %w", err)
	}
	return &Artifact{Number: number, Document: string(doc), Provenance: &rec}, nil
}

func (s *ArtifactService) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Download(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *ArtifactService) remember(a *Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[a.Number]; !ok {
		s.order = append(s.order, a.Number)
	}
	s.cache[a.Number] = a
	for len(s.order) > s.capacity {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
}
