package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	roles     []string
	confirmed bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("reader_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
		roles:    domain.DefaultRoles,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithRoles replaces the default roles
func (b *UserBuilder) WithRoles(roles ...string) *UserBuilder {
	b.roles = roles
	return b
}

// Confirmed marks the email as already confirmed
func (b *UserBuilder) Confirmed() *UserBuilder {
	b.confirmed = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:                        uuid.New().String(),
		Email:                     b.email,
		NormalizedEmail:           domain.NormalizeEmail(b.email),
		PasswordHash:              string(hashedPassword),
		EmailConfirmed:            b.confirmed,
		JoinedOn:                  now,
		TermsAgreedTo:             true,
		TermsAgreedOn:             now,
		PasswordLastChanged:       now,
		EmailNotificationsEnabled: true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	user.SetRoles(b.roles...)

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	IsAuthSuccessful bool   `json:"isAuthSuccessful"`
	ErrorMessage     string `json:"errorMessage"`
	Token            string `json:"token"`
}

// BuildAndAuthenticate registers the user via API and returns the stored user and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]interface{}{
		"email":         b.email,
		"password":      b.password,
		"termsAgreedTo": true,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	user, err := ts.Repos.User.GetByEmail(context.Background(), b.email)
	if err != nil {
		t.Fatalf("failed to load registered user: %v", err)
	}

	return user, authResp.Token
}

// ReadBookBuilder creates test read books
type ReadBookBuilder struct {
	owner     *domain.User
	name      string
	catalogID string
	startDate *time.Time
	endDate   *time.Time
}

// NewReadBookBuilder creates a new ReadBookBuilder with default values
func NewReadBookBuilder() *ReadBookBuilder {
	return &ReadBookBuilder{
		name:      "The Hobbit",
		catalogID: fmt.Sprintf("vol_%s", uuid.New().String()[:8]),
	}
}

// WithOwner sets the owning user
func (b *ReadBookBuilder) WithOwner(user *domain.User) *ReadBookBuilder {
	b.owner = user
	return b
}

// WithName sets the title
func (b *ReadBookBuilder) WithName(name string) *ReadBookBuilder {
	b.name = name
	return b
}

// WithPeriod sets the reading dates; end may be nil
func (b *ReadBookBuilder) WithPeriod(start time.Time, end *time.Time) *ReadBookBuilder {
	b.startDate = &start
	b.endDate = end
	return b
}

// Build creates the read book in the database
func (b *ReadBookBuilder) Build(t *testing.T, db *gorm.DB) *domain.ReadBook {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	book := &domain.ReadBook{
		UserID:            b.owner.ID,
		Name:              b.name,
		ExternalCatalogID: b.catalogID,
		StartDate:         b.startDate,
		EndDate:           b.endDate,
	}
	book.Stamp(b.owner.ID, time.Now())

	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to create read book: %v", err)
	}

	return book
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req and fails the test on transport errors
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
