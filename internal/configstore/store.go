package configstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	"DeBrief/pkg/logger"
	"DeBrief/pkg/metrics"
)

// Option configures Store.
type Option func(*Store)

// Store persists the Configuration to an optional remote document plus a
// local fallback file. Every partial write goes through Update.
type Store struct {
	localPath  string
	remote     repository.DocumentStore
	secrets    *Secrets
	timeout    time.Duration
	historyCap int
	logger     *logger.Logger
	metrics    repository.Metrics

	// guards the local temp-file + rename; never held across a remote call
	fileMu sync.Mutex
}

// New creates a store backed by the file at localPath.
func New(localPath string, opts ...Option) *Store {
	s := &Store{
		localPath:  localPath,
		timeout:    5 * time.Second,
		historyCap: 50,
		logger:     logger.Nop(),
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithRemote(doc repository.DocumentStore) Option {
	return func(s *Store) { s.remote = doc }
}

func WithSecrets(sec *Secrets) Option {
	return func(s *Store) { s.secrets = sec }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// HistoryCap is the per-symbol news history bound.
func (s *Store) HistoryCap() int { return s.historyCap }

// Load returns the current configuration with secrets applied.
func (s *Store) Load(ctx context.Context) (*models.Configuration, error) {
	cfg, err := s.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	s.secrets.Overlay(cfg)
	return cfg, nil
}

// Save writes cfg remotely (best effort) and locally (required).
func (s *Store) Save(ctx context.Context, cfg *models.Configuration) error {
	b, err := Encode(cfg)
	if err != nil {
		return err
	}

	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.Put(rctx, b)
		cancel()
		s.metrics.RecordStoreWrite(s.remote.Name(), err == nil)
		if err != nil {
			s.logger.Warn("remote config save failed, local copy still written",
				logger.String("remote", s.remote.Name()),
				logger.Error(err),
			)
		}
	}

	if err := s.writeLocal(b); err != nil {
		s.metrics.RecordStoreWrite("local", false)
		return err
	}
	s.metrics.RecordStoreWrite("local", true)
	return nil
}

// Update loads the latest persisted configuration, applies mutate and saves
// the result. Nothing is written when mutate fails. Secrets are applied to the
// returned copy only, so they are never persisted by a partial update.
func (s *Store) Update(ctx context.Context, mutate func(*models.Configuration) error) (*models.Configuration, error) {
	cfg, err := s.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	if err := mutate(cfg); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, cfg); err != nil {
		return nil, err
	}
	s.secrets.Overlay(cfg)
	return cfg, nil
}

func (s *Store) loadRaw(ctx context.Context) (*models.Configuration, error) {
	if s.remote != nil {
		if cfg, ok := s.loadRemote(ctx); ok {
			return cfg, nil
		}
	}
	return s.loadLocal()
}

func (s *Store) loadRemote(ctx context.Context) (*models.Configuration, bool) {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc, err := s.remote.Get(rctx)
	switch {
	case errors.Is(err, repository.ErrDocumentNotFound):
		s.logger.Debug("remote config empty, using local copy", logger.String("remote", s.remote.Name()))
		return nil, false
	case err != nil:
		s.metrics.RecordError("store_remote_load")
		s.logger.Warn("remote config load failed, using local copy",
			logger.String("remote", s.remote.Name()),
			logger.Error(err),
		)
		return nil, false
	case len(bytes.TrimSpace(doc)) == 0:
		return nil, false
	}

	cfg, err := Decode(doc, s.historyCap)
	if err != nil {
		s.metrics.RecordError("store_remote_decode")
		s.logger.Error("remote config is corrupt, using local copy",
			logger.String("remote", s.remote.Name()),
			logger.Error(err),
		)
		return nil, false
	}
	return cfg, true
}

func (s *Store) loadLocal() (*models.Configuration, error) {
	b, err := os.ReadFile(s.localPath)
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultConfiguration(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local config: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return models.DefaultConfiguration(), nil
	}

	cfg, err := Decode(b, s.historyCap)
	if err != nil {
		s.metrics.RecordError("store_local_decode")
		s.logger.Error("local config is corrupt, starting from defaults",
			logger.String("path", s.localPath),
			logger.Error(err),
		)
		return models.DefaultConfiguration(), nil
	}
	return cfg, nil
}

func (s *Store) writeLocal(b []byte) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	dir := filepath.Dir(s.localPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.localPath); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
