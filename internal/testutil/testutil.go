// Package testutil provides in-memory stand-ins for the database, identity
// provider and mailer used by package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"hospicloud/internal/domain/entity"
	"hospicloud/internal/infrastructure/database"
	"hospicloud/internal/infrastructure/identity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the full schema and
// foreign keys enforced.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeIdentity struct {
	email    string
	password string
	claims   *identity.Claims
}

// FakeProvider is an in-memory identity provider. Tokens are "token-<uid>".
type FakeProvider struct {
	mu         sync.Mutex
	identities map[string]*fakeIdentity
	emails     map[string]string

	// ProvisionErr, when set, fails every ProvisionIdentity call.
	ProvisionErr error
	// ClaimsErr, when set, fails every SetClaims call.
	ClaimsErr     error
	Deprovisioned []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		identities: map[string]*fakeIdentity{},
		emails:     map[string]string{},
	}
}

func (f *FakeProvider) ProvisionIdentity(ctx context.Context, email, password, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProvisionErr != nil {
		return "", f.ProvisionErr
	}
	if _, ok := f.emails[email]; ok {
		return "", identity.ErrEmailExists
	}
	uid := uuid.NewString()
	f.identities[uid] = &fakeIdentity{email: email, password: password}
	f.emails[email] = uid
	return uid, nil
}

func (f *FakeProvider) SetClaims(ctx context.Context, uid string, claims identity.Claims) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClaimsErr != nil {
		return f.ClaimsErr
	}
	id, ok := f.identities[uid]
	if !ok {
		return identity.ErrIdentityNotFound
	}
	id.claims = &claims
	return nil
}

func (f *FakeProvider) DeprovisionIdentity(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.identities[uid]; ok {
		delete(f.emails, id.email)
		delete(f.identities, uid)
	}
	f.Deprovisioned = append(f.Deprovisioned, uid)
	return nil
}

func (f *FakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.emails[email]
	if !ok {
		return nil, identity.ErrInvalidCredentials
	}
	id := f.identities[uid]
	if id.password != password || id.claims == nil {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Token{AccessToken: "token-" + uid, ExpiresIn: 3600}, nil
}

func (f *FakeProvider) VerifyToken(ctx context.Context, token string) (*identity.VerifiedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid := strings.TrimPrefix(token, "token-")
	id, ok := f.identities[uid]
	if !ok || id.claims == nil {
		return nil, identity.ErrInvalidToken
	}
	return &identity.VerifiedToken{UID: uid, TokenID: uid, Claims: *id.claims}, nil
}

// Password returns the credential the identity for email was provisioned with.
func (f *FakeProvider) Password(email string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.emails[email]
	if !ok {
		return "", false
	}
	return f.identities[uid].password, true
}

// Count returns the number of live identities.
func (f *FakeProvider) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.identities)
}

type SentMail struct {
	To       string
	Name     string
	Password string
}

type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentMail
}

func (m *FakeMailer) SendCredentials(ctx context.Context, to, displayName, plainPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMail{To: to, Name: displayName, Password: plainPassword})
	return nil
}

// CurrentUser builds the caller seen by usecases for user.
func CurrentUser(user *entity.User) *entity.CurrentUser {
	current := &entity.CurrentUser{ID: user.ID, Role: user.UserRole, HospitalID: user.HospitalID()}
	if user.ExternalID != nil {
		current.UID = *user.ExternalID
	}
	return current
}
