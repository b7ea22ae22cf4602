package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wricardo/keyquest/game/engine"
)

var (
	ErrInvalidSkin   = errors.New("invalid skin")
	ErrInvalidUserID = errors.New("invalid user id")
)

// Profile holds the per-user cosmetic settings
type Profile struct {
	UserID string `json:"user_id"`
	Skin   string `json:"skin"`
}

// Store looks up and updates user profiles
type Store interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SetSkin(ctx context.Context, userID, skin string) (*Profile, error)
	// Skin returns the user's skin, engine.DefaultSkin when none is stored
	Skin(ctx context.Context, userID string) (string, error)
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" || len(userID) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}

func validateSkin(skin string) error {
	if !engine.IsSkin(skin) {
		return fmt.Errorf("%w: %q (choose one of %s)", ErrInvalidSkin, skin, strings.Join(engine.Skins, ", "))
	}
	return nil
}

// MemoryStore keeps profiles in process memory
type MemoryStore struct {
	skins map[string]string
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{skins: make(map[string]string)}
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	skin, err := s.Skin(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{UserID: userID, Skin: skin}, nil
}

func (s *MemoryStore) SetSkin(ctx context.Context, userID, skin string) (*Profile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateSkin(skin); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.skins[userID] = skin
	s.mu.Unlock()

	return &Profile{UserID: userID, Skin: skin}, nil
}

func (s *MemoryStore) Skin(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if skin, ok := s.skins[userID]; ok {
		return skin, nil
	}
	return engine.DefaultSkin, nil
}
