package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/scanfr/readercore/pkg/data"
)

// TokenProvider supplies the device's push-notification identifier.
// The core never persists it; Token is called fresh on every sync
// attempt.
type TokenProvider interface {
	Token() (string, error)
}

// EphemeralTokenProvider is the fallback for hosts without a push
// subsystem: one random identifier per construction, so every sync in
// a session addresses the same installation.
type EphemeralTokenProvider struct {
	id string
}

func NewEphemeralTokenProvider() *EphemeralTokenProvider {
	return &EphemeralTokenProvider{id: uuid.NewString()}
}

func (p *EphemeralTokenProvider) Token() (string, error) { return p.id, nil }

// StoredTokenProvider reads the device identity token the host wrote
// to the store at startup. Missing token falls back to an ephemeral
// one so follow sync stays best-effort instead of failing hard.
type StoredTokenProvider struct {
	store data.Store

	mu       sync.Mutex
	fallback string
}

func NewStoredTokenProvider(store data.Store) *StoredTokenProvider {
	return &StoredTokenProvider{store: store}
}

func (p *StoredTokenProvider) Token() (string, error) {
	token, ok, err := p.store.Get(data.KeyToken)
	if err != nil {
		return "", err
	}
	if ok && token != "" {
		return token, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fallback == "" {
		p.fallback = uuid.NewString()
	}
	return p.fallback, nil
}

// FollowPusher is the slice of the catalog client the synchronizer
// depends on.
type FollowPusher interface {
	PushFollows(ctx context.Context, deviceToken string, follows []string) error
}

// Synchronizer maintains the locally persisted follow set and
// propagates every change to the catalog service, best-effort. Local
// state is authoritative; a failed push is reported but never rolled
// back, and gets another chance on the next toggle.
type Synchronizer struct {
	follows *data.FollowStore
	remote  FollowPusher
	tokens  TokenProvider
	log     *slog.Logger
}

func NewSynchronizer(follows *data.FollowStore, remote FollowPusher, tokens TokenProvider, log *slog.Logger) *Synchronizer {
	if tokens == nil {
		tokens = NewEphemeralTokenProvider()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{follows: follows, remote: remote, tokens: tokens, log: log}
}

func (s *Synchronizer) IsFollowing(mangaID string) bool {
	return s.follows.Contains(mangaID)
}

// Following returns the current local follow set.
func (s *Synchronizer) Following() []string {
	return s.follows.List()
}

// Toggle flips the follow state of mangaID. The local write must
// succeed before anything else happens; the remote push then runs with
// a fresh device token. On ErrRemoteSyncFailed the returned set is
// still the new local truth.
func (s *Synchronizer) Toggle(ctx context.Context, mangaID string) ([]string, error) {
	set, following, err := s.follows.Toggle(mangaID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	s.log.Info("follow toggled",
		slog.String("manga", mangaID),
		slog.Bool("following", following))

	token, err := s.tokens.Token()
	if err != nil {
		s.log.Warn("device token unavailable", slog.Any("error", err))
		return set, fmt.Errorf("%w: %v", ErrRemoteSyncFailed, err)
	}
	if err := s.remote.PushFollows(ctx, token, set); err != nil {
		s.log.Warn("follow push failed", slog.Any("error", err))
		return set, fmt.Errorf("%w: %v", ErrRemoteSyncFailed, err)
	}
	return set, nil
}
