package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockdrill/mockdrill-go/internal/domain/drill"
	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/email"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
		DefaultLevel:    slog.LevelError,
	})
	require.NoError(t, err)
	return logger
}

func testTracker() *performance.Tracker {
	return performance.NewTracker(nil)
}

// fakeGenerator returns a canned draft, or an error when set. A non-nil
// block channel holds the call open until closed.
type fakeGenerator struct {
	draft entities.DraftEmail
	err   error
	block chan struct{}
	calls int
	// captured inputs from the last call
	apiKey     string
	suggestion string
}

func (f *fakeGenerator) GenerateDraft(ctx context.Context, apiKey string, profile entities.TargetProfile, suggestion string) (entities.DraftEmail, error) {
	f.calls++
	f.apiKey = apiKey
	f.suggestion = suggestion
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return entities.DraftEmail{}, f.err
	}
	return f.draft, nil
}

// fakeSender records the last message, or fails when set.
type fakeSender struct {
	channel   string
	err       error
	simulated bool
	last      *messaging.Message
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(ctx context.Context, cfg *entities.EmailConfig, msg messaging.Message) (bool, error) {
	f.last = &msg
	return f.simulated, f.err
}

func aliceProfile() entities.TargetProfile {
	return entities.TargetProfile{
		Name: "Alice", Age: "30", Gender: "female", Department: "Finance",
		City: "Pune", DateOfBirth: "1995-04-12", Hobbies: "chess",
		FamilyInfo: "married, two kids", SocialInfo: "active on LinkedIn",
		EmployeeHistory: "5 years in accounting",
	}
}

func newWizard(t *testing.T, store *persistence.Store, gen DraftGenerator, senders ...messaging.Sender) *WizardService {
	t.Helper()
	w := NewWizardService(testLogger(t), testTracker(), store, gen, senders, 50*time.Millisecond)
	t.Cleanup(w.Stop)
	return w
}

func TestWizardAliceScenario(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{
		Subject: "Payroll Update Required",
		Body:    "Dear Alice,\nplease review at " + entities.ScamLinkPlaceholder,
	}}
	sender := &fakeSender{channel: "email"}
	w := newWizard(t, store, gen, sender)

	// Stage 1: target profile.
	state, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	assert.Equal(t, drill.StageEmailPreview, state.Stage)
	assert.True(t, drill.CompletedSet(state.Completed).Contains(drill.StageTargetInfo))

	// Stage 2: generate and review.
	state, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, state.Draft)
	assert.Equal(t, "Payroll Update Required", state.Draft.Subject)
	assert.NotContains(t, state.Draft.Body, entities.ScamLinkPlaceholder)
	assert.Contains(t, state.Draft.Body, state.Draft.ScamLink)
	assert.Regexp(t, `^https://.+/verify$`, state.Draft.ScamLink)

	state, err = w.AcceptDraft()
	require.NoError(t, err)
	assert.Equal(t, drill.StageDelivery, state.Stage)
	require.NotNil(t, state.Delivery)
	assert.Equal(t, state.Delivery.Body+"\n\nScam Link: "+state.Delivery.ScamLink, state.Delivery.Content)

	// Stage 3: deliver.
	result, err := w.Send(context.Background(), "email", "alice@corp.example", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, result.DrillID)

	require.NotNil(t, sender.last)
	assert.Equal(t, "alice@corp.example", sender.last.Contact)
	assert.Equal(t, result.DrillID, sender.last.DrillID)

	record, err := store.GetDrillByID(result.DrillID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSent, record.Analytics.Status)
	require.NotNil(t, record.SentAt)

	// Auto-reset returns the wizard to stage one.
	assert.Eventually(t, func() bool {
		return w.State().Stage == drill.StageTargetInfo && w.State().Profile == nil
	}, time.Second, 10*time.Millisecond)
}

func TestWizardRefusesIncompleteProfile(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	w := newWizard(t, store, &fakeGenerator{})

	profile := aliceProfile()
	profile.Hobbies = ""
	profile.City = "  "

	state, err := w.SubmitTarget(profile)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "hobbies")
	assert.Contains(t, err.Error(), "city")
	assert.Equal(t, drill.StageTargetInfo, state.Stage)
	assert.Empty(t, state.Completed)
}

func TestWizardRegenerateUsesSuggestionAndKey(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	_, err := store.SaveSettings(entities.UserSettings{GeminiAPIKey: "AIzaTestKey1234567890123456789012345"})
	require.NoError(t, err)

	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "Dear Alice, " + entities.ScamLinkPlaceholder}}
	w := newWizard(t, store, gen)

	_, err = w.SubmitTarget(aliceProfile())
	require.NoError(t, err)

	first, err := w.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "AIzaTestKey1234567890123456789012345", gen.apiKey)

	second, err := w.Generate(context.Background(), "mention the annual audit")
	require.NoError(t, err)
	assert.Equal(t, "mention the annual audit", gen.suggestion)
	assert.Equal(t, 2, gen.calls)
	// Each generation mints a fresh decoy link.
	assert.NotEqual(t, first.Draft.ScamLink, second.Draft.ScamLink)
}

func TestWizardResetDuringGenerateDropsDraft(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{
		draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder},
		block: make(chan struct{}),
	}
	w := newWizard(t, store, gen)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, genErr := w.Generate(context.Background(), "")
		assert.NoError(t, genErr)
	}()

	require.Eventually(t, func() bool { return w.State().Generating }, time.Second, 5*time.Millisecond)

	// Reset while the generation is still in flight, then let it finish.
	w.Reset()
	close(gen.block)
	<-done

	state := w.State()
	assert.Equal(t, drill.StageTargetInfo, state.Stage)
	assert.Nil(t, state.Profile)
	assert.Nil(t, state.Draft)
	assert.False(t, state.Generating)
}

func TestWizardGenerateOutOfOrder(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	w := newWizard(t, store, &fakeGenerator{})

	_, err := w.Generate(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrStageIncomplete)

	_, err = w.AcceptDraft()
	assert.ErrorIs(t, err, errs.ErrStageIncomplete)

	_, err = w.Send(context.Background(), "email", "a@b.co", "A")
	assert.ErrorIs(t, err, errs.ErrStageIncomplete)
}

func TestWizardAcceptRequiresDraft(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	w := newWizard(t, store, &fakeGenerator{err: errors.New("boom")})

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)

	_, err = w.Generate(context.Background(), "")
	require.Error(t, err)

	_, err = w.AcceptDraft()
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestWizardGoBack(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder}}
	w := newWizard(t, store, gen)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	_, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	_, err = w.AcceptDraft()
	require.NoError(t, err)

	// Delivery -> EmailPreview keeps the target stage completed.
	state, err := w.GoBack()
	require.NoError(t, err)
	assert.Equal(t, drill.StageEmailPreview, state.Stage)
	assert.Equal(t, []drill.Stage{drill.StageTargetInfo}, state.Completed)
	assert.NotNil(t, state.Draft)

	// EmailPreview -> TargetInfo clears everything.
	state, err = w.GoBack()
	require.NoError(t, err)
	assert.Equal(t, drill.StageTargetInfo, state.Stage)
	assert.Empty(t, state.Completed)
	assert.Nil(t, state.Draft)
	assert.Nil(t, state.Delivery)

	// Backing out of the first stage is a no-op.
	state, err = w.GoBack()
	require.NoError(t, err)
	assert.Equal(t, drill.StageTargetInfo, state.Stage)
}

func TestWizardSendValidatesContact(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder}}
	emailSender := &fakeSender{channel: "email"}
	smsSender := &fakeSender{channel: "sms"}
	w := newWizard(t, store, gen, emailSender, smsSender)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	_, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	_, err = w.AcceptDraft()
	require.NoError(t, err)

	_, err = w.Send(context.Background(), "email", "not-an-email", "X")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = w.Send(context.Background(), "sms", "9876543210", "X")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = w.Send(context.Background(), "carrier-pigeon", "a@b.co", "X")
	assert.ErrorIs(t, err, errs.ErrValidation)

	// Valid phone with country code goes through.
	result, err := w.Send(context.Background(), "sms", "+91 9876543210", "X")
	require.NoError(t, err)
	assert.NotEmpty(t, result.DrillID)
}

func TestWizardSendKeepsRecordOnDeliveryFailure(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder}}
	sender := &fakeSender{channel: "email", err: errs.ErrDeliveryFailed}
	w := newWizard(t, store, gen, sender)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	_, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	_, err = w.AcceptDraft()
	require.NoError(t, err)

	result, err := w.Send(context.Background(), "email", "alice@corp.example", "Alice")
	assert.ErrorIs(t, err, errs.ErrDeliveryFailed)

	// The record was persisted before the gateway call and stays in history.
	record, storeErr := store.GetDrillByID(result.DrillID)
	require.NoError(t, storeErr)
	assert.Equal(t, entities.StatusSent, record.Analytics.Status)

	// The wizard stays in delivery so the operator can retry.
	assert.Equal(t, drill.StageDelivery, w.State().Stage)
}

func TestWizardScheduleSend(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder}}
	sender := &fakeSender{channel: "email"}
	w := newWizard(t, store, gen, sender)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	_, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	_, err = w.AcceptDraft()
	require.NoError(t, err)

	_, err = w.ScheduleSend("email", "alice@corp.example", "Alice", time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, errs.ErrValidation)

	state, err := w.ScheduleSend("email", "alice@corp.example", "Alice", time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)
	assert.NotNil(t, state.ScheduledAt)

	assert.Eventually(t, func() bool {
		drills, _ := store.GetAllDrills()
		return len(drills) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWizardCancelSchedule(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	gen := &fakeGenerator{draft: entities.DraftEmail{Subject: "S", Body: "B " + entities.ScamLinkPlaceholder}}
	sender := &fakeSender{channel: "email"}
	w := newWizard(t, store, gen, sender)

	_, err := w.SubmitTarget(aliceProfile())
	require.NoError(t, err)
	_, err = w.Generate(context.Background(), "")
	require.NoError(t, err)
	_, err = w.AcceptDraft()
	require.NoError(t, err)

	_, err = w.ScheduleSend("email", "alice@corp.example", "Alice", time.Now().Add(30*time.Millisecond))
	require.NoError(t, err)

	state := w.CancelSchedule()
	assert.Nil(t, state.ScheduledAt)

	time.Sleep(60 * time.Millisecond)
	drills, err := store.GetAllDrills()
	require.NoError(t, err)
	assert.Empty(t, drills)
}

// fakeMailer records the last password reset sent.
type fakeMailer struct {
	resetTo  string
	resetURL string
	err      error
}

func (f *fakeMailer) SendWelcomeEmail(toEmail, name, dashboardURL string) error { return nil }

func (f *fakeMailer) SendPasswordResetEmail(toEmail, name, resetURL string) error {
	f.resetTo = toEmail
	f.resetURL = resetURL
	return f.err
}

func newAuthService(t *testing.T, store *persistence.Store) *AuthService {
	t.Helper()
	return NewAuthService(testLogger(t), testTracker(), store, security.PlaintextVerifier{}, email.NoopService{}, "http://localhost:8080")
}

func TestSeedDefaultUserAndLogin(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	auth := newAuthService(t, store)

	require.NoError(t, auth.SeedDefaultUser("admin@example.com", "password", "Admin User"))
	// Seeding twice must not duplicate.
	require.NoError(t, auth.SeedDefaultUser("admin@example.com", "password", "Admin User"))

	users, err := store.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "1", users[0].ID)

	session, err := auth.Login("admin@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "1", session.ID)
	assert.Equal(t, "Admin User", session.FullName)
	assert.True(t, auth.IsAuthenticated())

	_, err = auth.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, errs.ErrInvalidCredential)

	_, err = auth.Login("ghost@example.com", "password")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, auth.Logout())
	assert.False(t, auth.IsAuthenticated())
}

func TestSignup(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	auth := newAuthService(t, store)

	session, err := auth.Signup("bob@corp.example", "hunter2", "Bob Briggs")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.NotEqual(t, "1", session.ID)
	assert.True(t, auth.IsAuthenticated())

	_, err = auth.Signup("bob@corp.example", "other", "Bob Again")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = auth.Signup("not-an-email", "pw", "Nope")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = auth.Signup("ok@corp.example", "", "No Password")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestResetPassword(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	mailer := &fakeMailer{}
	auth := NewAuthService(testLogger(t), testTracker(), store, security.PlaintextVerifier{}, mailer, "http://localhost:8080")

	require.NoError(t, auth.SeedDefaultUser("admin@example.com", "password", "Admin User"))

	require.NoError(t, auth.ResetPassword("admin@example.com"))
	assert.Equal(t, "admin@example.com", mailer.resetTo)
	assert.Contains(t, mailer.resetURL, "http://localhost:8080/reset-password?email=")

	err := auth.ResetPassword("ghost@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAnalyticsTracking(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	logger := testLogger(t)
	broadcaster := messaging.NewTrackBroadcaster(logger.Track())
	go broadcaster.Run()
	t.Cleanup(broadcaster.Stop)

	analytics := NewAnalyticsService(logger, testTracker(), store, broadcaster)

	require.NoError(t, store.SaveDrill(entities.DrillRecord{
		ID:        "d1",
		Analytics: entities.DrillAnalytics{Status: entities.StatusSent},
	}))

	record, err := analytics.TrackClick("d1", "10.0.0.5", "curl/8")
	require.NoError(t, err)
	assert.True(t, record.Analytics.LinkClicked)
	assert.Equal(t, entities.StatusClicked, record.Analytics.Status)

	// A late open never regresses a click.
	record, err = analytics.TrackOpen("d1", "10.0.0.5", "curl/8")
	require.NoError(t, err)
	assert.True(t, record.Analytics.EmailOpened)
	assert.Equal(t, entities.StatusClicked, record.Analytics.Status)

	_, err = analytics.TrackOpen("missing", "", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSettingsServiceStatus(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryKV())
	svc := NewSettingsService(testLogger(t), store)

	status, err := svc.Status()
	require.NoError(t, err)
	assert.False(t, status.GeminiKeyPresent)

	_, err = svc.Save(entities.UserSettings{
		GeminiAPIKey: "short",
		EmailConfig: &entities.EmailConfig{
			EmailJS: &entities.EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk"},
		},
	})
	require.NoError(t, err)

	status, err = svc.Status()
	require.NoError(t, err)
	assert.True(t, status.GeminiKeyPresent)
	assert.False(t, status.GeminiKeyValid)
	assert.True(t, status.EmailConfigured)
	assert.False(t, status.SMSConfigured)
}
