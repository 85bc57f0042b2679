package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryKV())
}

func TestSaveSettingsDeepMerge(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveSettings(entities.UserSettings{
		GeminiAPIKey: "AIzaOriginalKey",
		EmailConfig: &entities.EmailConfig{
			EmailJS: &entities.EmailJSConfig{
				ServiceID:  "service_1",
				TemplateID: "template_1",
				PublicKey:  "pk_1",
			},
			SMS: &entities.SMSConfig{APIKey: "sms_key", From: "+15550001111"},
		},
	})
	require.NoError(t, err)

	// A partial update touching one nested field must not disturb siblings.
	merged, err := store.SaveSettings(entities.UserSettings{
		EmailConfig: &entities.EmailConfig{
			EmailJS: &entities.EmailJSConfig{PublicKey: "pk_2"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "AIzaOriginalKey", merged.GeminiAPIKey)
	require.NotNil(t, merged.EmailConfig)
	require.NotNil(t, merged.EmailConfig.EmailJS)
	assert.Equal(t, "service_1", merged.EmailConfig.EmailJS.ServiceID)
	assert.Equal(t, "template_1", merged.EmailConfig.EmailJS.TemplateID)
	assert.Equal(t, "pk_2", merged.EmailConfig.EmailJS.PublicKey)
	require.NotNil(t, merged.EmailConfig.SMS)
	assert.Equal(t, "sms_key", merged.EmailConfig.SMS.APIKey)

	persisted, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, merged, persisted)
}

func TestGetSettingsEmpty(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, entities.UserSettings{}, settings)
}

func TestDrillRoundTrip(t *testing.T) {
	store := newTestStore(t)

	sentAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	record := entities.DrillRecord{
		ID:            "01JP8ZX4N2",
		TargetContact: "alice@corp.example",
		TargetName:    "Alice",
		Subject:       "Action Required",
		Content:       "Hello Alice\n\nScam Link: https://secure-verify-ab12cd.com/verify",
		ScamLink:      "https://secure-verify-ab12cd.com/verify",
		CreatedAt:     sentAt,
		SentAt:        &sentAt,
		Analytics:     entities.DrillAnalytics{Status: entities.StatusSent},
	}
	require.NoError(t, store.SaveDrill(record))

	got, err := store.GetDrillByID("01JP8ZX4N2")
	require.NoError(t, err)
	assert.Equal(t, record.TargetContact, got.TargetContact)
	require.NotNil(t, got.SentAt)
	assert.True(t, got.SentAt.Equal(sentAt))

	_, err = store.GetDrillByID("missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDrillsInsertionOrder(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveDrill(entities.DrillRecord{ID: id}))
	}

	drills, err := store.GetAllDrills()
	require.NoError(t, err)
	require.Len(t, drills, 3)
	assert.Equal(t, "a", drills[0].ID)
	assert.Equal(t, "b", drills[1].ID)
	assert.Equal(t, "c", drills[2].ID)
}

func TestUpdateDrillAnalytics(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveDrill(entities.DrillRecord{
		ID:        "d1",
		Analytics: entities.DrillAnalytics{Status: entities.StatusSent},
	}))

	opened := true
	openedAt := time.Now().UTC()
	statusOpened := entities.StatusOpened
	updated, err := store.UpdateDrillAnalytics("d1", entities.AnalyticsPatch{
		EmailOpened: &opened,
		OpenedAt:    &openedAt,
		Status:      &statusOpened,
	})
	require.NoError(t, err)
	assert.True(t, updated.Analytics.EmailOpened)
	assert.Equal(t, entities.StatusOpened, updated.Analytics.Status)

	// A click escalates; a late open callback must not regress it.
	clicked := true
	statusClicked := entities.StatusClicked
	updated, err = store.UpdateDrillAnalytics("d1", entities.AnalyticsPatch{
		LinkClicked: &clicked,
		Status:      &statusClicked,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusClicked, updated.Analytics.Status)

	updated, err = store.UpdateDrillAnalytics("d1", entities.AnalyticsPatch{Status: &statusOpened})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusClicked, updated.Analytics.Status)

	_, err = store.UpdateDrillAnalytics("nope", entities.AnalyticsPatch{})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetDashboardStats(t *testing.T) {
	store := newTestStore(t)

	empty, err := store.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalDrills)
	assert.Equal(t, "0.0", empty.ClickRate)
	assert.Equal(t, "0.0", empty.SuccessRate)

	clicked := entities.DrillAnalytics{EmailOpened: true, LinkClicked: true, Status: entities.StatusClicked}
	openedOnly := entities.DrillAnalytics{EmailOpened: true, Status: entities.StatusOpened}
	require.NoError(t, store.SaveDrill(entities.DrillRecord{ID: "1", TargetContact: "a@x.com", Analytics: clicked}))
	require.NoError(t, store.SaveDrill(entities.DrillRecord{ID: "2", TargetContact: "a@x.com", Analytics: openedOnly}))
	require.NoError(t, store.SaveDrill(entities.DrillRecord{ID: "3", TargetContact: "b@x.com"}))

	stats, err := store.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDrills)
	assert.Equal(t, 2, stats.TotalTargets)
	assert.Equal(t, "33.3", stats.ClickRate)
	assert.Equal(t, "66.7", stats.OpenRate)
	assert.Equal(t, "66.7", stats.SuccessRate)
}

func TestUserDirectory(t *testing.T) {
	store := newTestStore(t)

	admin := entities.User{ID: "1", Email: "admin@example.com", Password: "password", FullName: "Admin User"}
	require.NoError(t, store.AppendUser(admin))

	// Duplicate emails are rejected case-insensitively.
	err := store.AppendUser(entities.User{ID: "2", Email: "Admin@Example.com"})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	found, err := store.FindUserByEmail("ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", found.ID)

	_, err = store.FindUserByEmail("ghost@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSession()
	assert.ErrorIs(t, err, errs.ErrNotFound)

	session := entities.Session{ID: "1", Email: "admin@example.com", FullName: "Admin User"}
	require.NoError(t, store.SetSession(session))

	got, err := store.GetSession()
	require.NoError(t, err)
	assert.Equal(t, session.Email, got.Email)

	require.NoError(t, store.ClearSession())
	_, err = store.GetSession()
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// Clearing twice is fine.
	require.NoError(t, store.ClearSession())
}
