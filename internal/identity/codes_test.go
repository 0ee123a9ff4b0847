package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTokens is an in-memory UserTokenRepository.
type memoryTokens struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]domain.UserToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[uuid.UUID]domain.UserToken)}
}

func (m *memoryTokens) GetOne(ctx context.Context, filter repository.Filter) (*domain.UserToken, error) {
	return nil, repository.ErrNotSupported
}

func (m *memoryTokens) GetMany(ctx context.Context, filters ...repository.Filter) ([]*domain.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.UserToken, 0, len(m.tokens))
	for _, tok := range m.tokens {
		tok := tok
		out = append(out, &tok)
	}
	return out, nil
}

func (m *memoryTokens) InsertOne(ctx context.Context, entity *domain.UserToken) (*domain.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range m.tokens {
		if tok.TokenHash == entity.TokenHash {
			return nil, repository.ErrDuplicate
		}
	}
	m.tokens[entity.ID] = *entity
	return entity, nil
}

func (m *memoryTokens) InsertMany(ctx context.Context, entities []*domain.UserToken) (bool, error) {
	for _, e := range entities {
		if _, err := m.InsertOne(ctx, e); err != nil {
			return false, err
		}
	}
	return len(entities) > 0, nil
}

func (m *memoryTokens) UpdateOne(ctx context.Context, entity *domain.UserToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[entity.ID]; !ok {
		return false, nil
	}
	m.tokens[entity.ID] = *entity
	return true, nil
}

func (m *memoryTokens) UpdateMany(ctx context.Context, entities []*domain.UserToken) (bool, error) {
	return false, repository.ErrNotSupported
}

func (m *memoryTokens) DeleteOne(ctx context.Context, entity *domain.UserToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[entity.ID]
	delete(m.tokens, entity.ID)
	return ok, nil
}

func (m *memoryTokens) DeleteMany(ctx context.Context, entities []*domain.UserToken) (bool, error) {
	deleted := false
	for _, e := range entities {
		ok, _ := m.DeleteOne(ctx, e)
		deleted = deleted || ok
	}
	return deleted, nil
}

func (m *memoryTokens) GetActive(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string, now time.Time) (*domain.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range m.tokens {
		if tok.UserID == userID && tok.Purpose == purpose && tok.TokenHash == tokenHash && tok.Usable(now) {
			tok := tok
			return &tok, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryTokens) Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[id]
	if !ok || tok.ConsumedAt != nil {
		return false, nil
	}
	tok.ConsumedAt = &now
	m.tokens[id] = tok
	return true, nil
}

func (m *memoryTokens) ConsumeAllForUser(ctx context.Context, userID string, purpose domain.TokenPurpose, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, tok := range m.tokens {
		if tok.UserID == userID && tok.Purpose == purpose && tok.ConsumedAt == nil {
			tok.ConsumedAt = &now
			m.tokens[id] = tok
		}
	}
	return nil
}

func (m *memoryTokens) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, tok := range m.tokens {
		if !tok.ExpiresAt.After(before) || tok.ConsumedAt != nil {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func newTestProvider(t *testing.T) (*CodeProvider, *memoryTokens, *time.Time) {
	t.Helper()

	store := newMemoryTokens()
	provider := NewCodeProvider(store, 72*time.Hour, time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }
	return provider, store, &now
}

func TestCodeProvider_GenerateStoresOnlyHash(t *testing.T) {
	provider, store, now := newTestProvider(t)
	ctx := context.Background()

	code, err := provider.Generate(ctx, "user-1", domain.TokenPurposePasswordReset)
	require.NoError(t, err)
	assert.NotEmpty(t, code)

	tokens, err := store.GetMany(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, HashCode(code), tokens[0].TokenHash)
	assert.NotEqual(t, code, tokens[0].TokenHash)
	assert.Equal(t, now.Add(time.Hour), tokens[0].ExpiresAt)
	assert.NotEqual(t, uuid.Nil, tokens[0].ID)

	other, err := provider.Generate(ctx, "user-1", domain.TokenPurposePasswordReset)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestCodeProvider_GenerateUnknownPurpose(t *testing.T) {
	provider, _, _ := newTestProvider(t)

	_, err := provider.Generate(context.Background(), "user-1", domain.TokenPurpose("unlock"))
	assert.ErrorIs(t, err, ErrUnknownPurpose)
}

func TestCodeProvider_Redeem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		redeem  func(p *CodeProvider, now *time.Time, code string) error
		wantErr error
	}{
		{
			name: "valid code",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code)
			},
		},
		{
			name: "second use",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				require.NoError(t, p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code))
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "another user",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				return p.Redeem(ctx, "user-2", domain.TokenPurposePasswordReset, code)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "another purpose",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				return p.Redeem(ctx, "user-1", domain.TokenPurposeEmailConfirmation, code)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "expired",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				*now = now.Add(time.Hour)
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "wrong code",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code+"x")
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "empty code",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, "")
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "revoked",
			redeem: func(p *CodeProvider, now *time.Time, code string) error {
				require.NoError(t, p.RevokeAll(ctx, "user-1", domain.TokenPurposePasswordReset))
				return p.Redeem(ctx, "user-1", domain.TokenPurposePasswordReset, code)
			},
			wantErr: ErrInvalidCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, _, now := newTestProvider(t)

			code, err := provider.Generate(ctx, "user-1", domain.TokenPurposePasswordReset)
			require.NoError(t, err)

			err = tt.redeem(provider, now, code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCodeProvider_RevokeAllLeavesOtherPurposes(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	ctx := context.Background()

	confirm, err := provider.Generate(ctx, "user-1", domain.TokenPurposeEmailConfirmation)
	require.NoError(t, err)
	_, err = provider.Generate(ctx, "user-1", domain.TokenPurposePasswordReset)
	require.NoError(t, err)

	require.NoError(t, provider.RevokeAll(ctx, "user-1", domain.TokenPurposePasswordReset))

	assert.NoError(t, provider.Redeem(ctx, "user-1", domain.TokenPurposeEmailConfirmation, confirm))
}

func TestEncodeDecodeCode(t *testing.T) {
	codes := []string{
		"abc",
		"with spaces and /+= symbols",
		"CfDJ8+Lq3/aa==",
	}

	for _, code := range codes {
		encoded := EncodeCode(code)
		assert.NotContains(t, encoded, "+")
		assert.NotContains(t, encoded, "/")
		assert.NotContains(t, encoded, "=")

		decoded, err := DecodeCode(encoded)
		require.NoError(t, err)
		assert.Equal(t, code, decoded)

		padded, err := DecodeCode(encoded + "==")
		require.NoError(t, err)
		assert.Equal(t, code, padded)
	}
}

func TestDecodeCode_Malformed(t *testing.T) {
	for _, encoded := range []string{"", "not*base64", "a"} {
		_, err := DecodeCode(encoded)
		assert.True(t, errors.Is(err, ErrMalformedCode), encoded)
	}
}
