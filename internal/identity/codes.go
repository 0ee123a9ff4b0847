package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
	"github.com/google/uuid"
)

const codeLength = 32 // bytes, 256 bits

var (
	// ErrInvalidCode covers unknown, expired, spent and foreign codes alike.
	ErrInvalidCode    = errors.New("invalid code")
	ErrMalformedCode  = errors.New("malformed code")
	ErrUnknownPurpose = errors.New("unknown code purpose")
)

// CodeProvider issues and redeems single-use codes bound to one user and one
// purpose. Only a hash of each code is persisted.
type CodeProvider struct {
	tokens repository.UserTokenRepository
	ttl    map[domain.TokenPurpose]time.Duration
	now    func() time.Time
}

func NewCodeProvider(tokens repository.UserTokenRepository, confirmationTTL, resetTTL time.Duration) *CodeProvider {
	return &CodeProvider{
		tokens: tokens,
		ttl: map[domain.TokenPurpose]time.Duration{
			domain.TokenPurposeEmailConfirmation: confirmationTTL,
			domain.TokenPurposePasswordReset:     resetTTL,
		},
		now: time.Now,
	}
}

// Generate creates a new code. Earlier codes for the same purpose stay valid
// until they expire or one of them is redeemed.
func (p *CodeProvider) Generate(ctx context.Context, userID string, purpose domain.TokenPurpose) (string, error) {
	if !purpose.IsValid() {
		return "", fmt.Errorf("%w %q", ErrUnknownPurpose, purpose)
	}
	ttl := p.ttl[purpose]

	raw := make([]byte, codeLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := base64.RawURLEncoding.EncodeToString(raw)

	now := p.now()
	record := &domain.UserToken{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: HashCode(code),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := p.tokens.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// Redeem consumes code. It succeeds at most once per code.
func (p *CodeProvider) Redeem(ctx context.Context, userID string, purpose domain.TokenPurpose, code string) error {
	if code == "" {
		return ErrInvalidCode
	}

	now := p.now()
	record, err := p.tokens.GetActive(ctx, userID, purpose, HashCode(code), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	consumed, err := p.tokens.Consume(ctx, record.ID, now)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidCode
	}
	return nil
}

// RevokeAll spends every outstanding code of purpose for the user.
func (p *CodeProvider) RevokeAll(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	return p.tokens.ConsumeAllForUser(ctx, userID, purpose, p.now())
}

// HashCode is the stored form of a code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// EncodeCode makes a code safe to embed in a link query string.
func EncodeCode(code string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(code))
}

// DecodeCode reverses EncodeCode. Padded input is accepted.
func DecodeCode(encoded string) (string, error) {
	if encoded == "" {
		return "", ErrMalformedCode
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", ErrMalformedCode
	}
	return string(decoded), nil
}
