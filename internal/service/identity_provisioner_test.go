package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospicloud/config"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/repository"
	"hospicloud/internal/testutil"
	"hospicloud/pkg/metrics"
	"hospicloud/pkg/password"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type provisionerFixture struct {
	db          *gorm.DB
	provider    *testutil.FakeProvider
	mailer      *testutil.FakeMailer
	metrics     *metrics.Metrics
	hasher      password.Hasher
	provisioner IdentityProvisioner
}

func newProvisionerFixture(t *testing.T, maxAttempts int) *provisionerFixture {
	t.Helper()
	f := &provisionerFixture{
		db:       testutil.NewDB(t),
		provider: testutil.NewFakeProvider(),
		mailer:   &testutil.FakeMailer{},
		metrics:  metrics.NewMetrics("test", ""),
		hasher:   password.NewBcryptHasher(4),
	}
	f.provisioner = NewIdentityProvisioner(
		f.db,
		testutil.NewLogger(),
		config.OutboxConfig{PollInterval: time.Minute, BatchSize: 10, MaxAttempts: maxAttempts},
		repository.NewUserRepository(),
		repository.NewIdentityOutboxRepository(),
		f.provider,
		f.hasher,
		f.mailer,
		f.metrics,
	)
	return f
}

// seed stores a patient whose password hash matches plain, with its outbox event.
func (f *provisionerFixture) seed(t *testing.T, email, plain string) (*entity.User, *entity.IdentityOutbox) {
	t.Helper()
	hashed, err := f.hasher.Hash(plain)
	require.NoError(t, err)

	user := &entity.User{
		UserRole:       entity.RolePatient,
		DocumentType:   entity.DocumentTypeNationalID,
		Name:           "Ana",
		LastName:       "Perez",
		Email:          email,
		DocumentNumber: "00112345678",
		DateOfBirth:    time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Password:       hashed,
	}
	require.NoError(t, f.db.Create(user).Error)
	require.NoError(t, f.db.Create(&entity.Patient{UserID: user.ID, BloodType: entity.BloodTypeOPlus}).Error)

	event := f.provisioner.NewEvent(user.ID)
	require.NoError(t, f.db.Create(event).Error)
	return user, event
}

func (f *provisionerFixture) reload(t *testing.T, event *entity.IdentityOutbox) *entity.IdentityOutbox {
	t.Helper()
	var stored entity.IdentityOutbox
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	return &stored
}

func (f *provisionerFixture) makeDue(t *testing.T, event *entity.IdentityOutbox) {
	t.Helper()
	require.NoError(t, f.db.Model(&entity.IdentityOutbox{}).
		Where("id = ?", event.ID).
		Update("next_attempt_at", time.Now().Add(-time.Minute)).Error)
}

func TestProvisionCreatesIdentity(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 3)
	user, event := f.seed(t, "ana@example.com", "initial-pass")

	require.NoError(t, f.provisioner.Provision(ctx, event, "initial-pass"))

	require.NotNil(t, event.ExternalID)
	stored := f.reload(t, event)
	assert.Equal(t, entity.OutboxStatusProcessed, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.NotNil(t, stored.ProcessedAt)

	var saved entity.User
	require.NoError(t, f.db.First(&saved, user.ID).Error)
	require.NotNil(t, saved.ExternalID)
	assert.Equal(t, *event.ExternalID, *saved.ExternalID)

	providerPassword, ok := f.provider.Password("ana@example.com")
	require.True(t, ok)
	assert.Equal(t, "initial-pass", providerPassword)

	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, "ana@example.com", f.mailer.Sent[0].To)
	assert.Equal(t, "initial-pass", f.mailer.Sent[0].Password)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.IdentityProvisioned))

	token, err := f.provider.SignIn(ctx, "ana@example.com", "initial-pass")
	require.NoError(t, err)
	verified, err := f.provider.VerifyToken(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.Claims.UserID)
	assert.Equal(t, entity.RolePatient, verified.Claims.Role)
	assert.Nil(t, verified.Claims.HospitalID)
}

func TestProvisionIsNotRepeatedForProcessedEvent(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 3)
	_, event := f.seed(t, "ana@example.com", "initial-pass")

	require.NoError(t, f.provisioner.Provision(ctx, event, "initial-pass"))
	require.NoError(t, f.provisioner.Provision(ctx, event, "initial-pass"))

	assert.Equal(t, 1, f.provider.Count())
	assert.Len(t, f.mailer.Sent, 1)
}

func TestProvisionFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 3)
	user, event := f.seed(t, "ana@example.com", "initial-pass")

	f.provider.ProvisionErr = errors.New("provider unavailable")
	require.Error(t, f.provisioner.Provision(ctx, event, "initial-pass"))

	stored := f.reload(t, event)
	assert.Equal(t, entity.OutboxStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Contains(t, stored.LastError, "provider unavailable")
	assert.True(t, stored.NextAttemptAt.After(time.Now()))
	assert.Empty(t, f.mailer.Sent)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.IdentityFailed))

	// Not yet due.
	processed, err := f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	f.provider.ProvisionErr = nil
	f.makeDue(t, event)

	processed, err = f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored = f.reload(t, event)
	assert.Equal(t, entity.OutboxStatusProcessed, stored.Status)
	assert.Equal(t, 2, stored.Attempts)

	// A retry issues a new credential and stores its hash.
	require.Len(t, f.mailer.Sent, 1)
	issued := f.mailer.Sent[0].Password
	assert.NotEqual(t, "initial-pass", issued)
	assert.Len(t, issued, password.GeneratedLength)

	var saved entity.User
	require.NoError(t, f.db.First(&saved, user.ID).Error)
	assert.NoError(t, f.hasher.Compare(saved.Password, issued))

	providerPassword, ok := f.provider.Password("ana@example.com")
	require.True(t, ok)
	assert.Equal(t, issued, providerPassword)
}

func TestProvisionRemovesPartialIdentityBeforeRetry(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 3)
	_, event := f.seed(t, "ana@example.com", "initial-pass")

	f.provider.ClaimsErr = errors.New("claims rejected")
	require.Error(t, f.provisioner.Provision(ctx, event, "initial-pass"))

	stored := f.reload(t, event)
	require.NotNil(t, stored.ExternalID)
	partial := *stored.ExternalID

	f.provider.ClaimsErr = nil
	f.makeDue(t, event)
	processed, err := f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.Contains(t, f.provider.Deprovisioned, partial)
	assert.Equal(t, 1, f.provider.Count())
}

func TestProvisionGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 2)
	_, event := f.seed(t, "ana@example.com", "initial-pass")

	f.provider.ProvisionErr = errors.New("provider unavailable")
	require.Error(t, f.provisioner.Provision(ctx, event, "initial-pass"))
	assert.Equal(t, entity.OutboxStatusPending, f.reload(t, event).Status)

	f.makeDue(t, event)
	processed, err := f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	stored := f.reload(t, event)
	assert.Equal(t, entity.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 2, stored.Attempts)

	f.provider.ProvisionErr = nil
	f.makeDue(t, event)
	processed, err = f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 0, f.provider.Count())
}

func TestProvisionFailsForDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 5)
	user, event := f.seed(t, "ana@example.com", "initial-pass")
	require.NoError(t, f.db.Delete(&entity.User{}, user.ID).Error)

	err := f.provisioner.Provision(ctx, event, "initial-pass")
	assert.ErrorIs(t, err, ErrUserGone)
	assert.Equal(t, entity.OutboxStatusFailed, f.reload(t, event).Status)
}

func TestProvisionRemovesPartialIdentityOfDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newProvisionerFixture(t, 5)
	user, event := f.seed(t, "ana@example.com", "initial-pass")

	f.provider.ClaimsErr = errors.New("claims rejected")
	require.Error(t, f.provisioner.Provision(ctx, event, "initial-pass"))
	partial := *f.reload(t, event).ExternalID
	f.provider.ClaimsErr = nil

	require.NoError(t, f.db.Delete(&entity.User{}, user.ID).Error)
	f.makeDue(t, event)

	processed, err := f.provisioner.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	assert.Contains(t, f.provider.Deprovisioned, partial)
	assert.Zero(t, f.provider.Count())
	assert.Equal(t, entity.OutboxStatusFailed, f.reload(t, event).Status)

	// The email is free for a new identity.
	_, err = f.provider.ProvisionIdentity(ctx, "ana@example.com", "another1", "Ana Perez")
	assert.NoError(t, err)
}
