package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/drill"
	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
)

// DraftGenerator produces a draft email for a target profile. Satisfied by
// genai.Client; faked in tests.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, apiKey string, profile entities.TargetProfile, suggestion string) (entities.DraftEmail, error)
}

// WizardState is a read-only snapshot of the drill-creation wizard.
type WizardState struct {
	Stage       drill.Stage               `json:"stage"`
	Completed   []drill.Stage             `json:"completed"`
	Profile     *entities.TargetProfile   `json:"profile,omitempty"`
	Draft       *entities.DraftEmail      `json:"draft,omitempty"`
	Delivery    *entities.DeliveryContent `json:"delivery,omitempty"`
	Generating  bool                      `json:"generating"`
	Sending     bool                      `json:"sending"`
	LastDrillID string                    `json:"lastDrillId,omitempty"`
	ScheduledAt *time.Time                `json:"scheduledAt,omitempty"`
}

// SendResult is returned from a completed delivery.
type SendResult struct {
	DrillID   string `json:"drillId"`
	Simulated bool   `json:"simulated"`
	Message   string `json:"message"`
}

// WizardService drives the three-stage drill creation flow: collect a target
// profile, review a generated draft, deliver over a channel. One wizard per
// server; the dashboard is single-operator.
type WizardService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *persistence.Store
	generator   DraftGenerator
	senders     map[string]messaging.Sender
	resetDelay  time.Duration

	mu          sync.Mutex
	stage       drill.Stage
	completed   drill.CompletedSet
	profile     *entities.TargetProfile
	draft       *entities.DraftEmail
	delivery    *entities.DeliveryContent
	generating  bool
	sending     bool
	lastDrillID string
	resetTimer  *time.Timer
	schedule    *scheduledSend
}

type scheduledSend struct {
	timer *time.Timer
	at    time.Time
}

// NewWizardService creates the wizard in its initial stage.
func NewWizardService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, store *persistence.Store, generator DraftGenerator, senders []messaging.Sender, resetDelay time.Duration) *WizardService {
	byChannel := make(map[string]messaging.Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &WizardService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		generator:   generator,
		senders:     byChannel,
		resetDelay:  resetDelay,
		stage:       drill.StageTargetInfo,
	}
}

// State returns a snapshot of the wizard.
func (w *WizardService) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *WizardService) snapshotLocked() WizardState {
	state := WizardState{
		Stage:       w.stage,
		Completed:   append([]drill.Stage(nil), w.completed...),
		Generating:  w.generating,
		Sending:     w.sending,
		LastDrillID: w.lastDrillID,
	}
	if w.profile != nil {
		p := *w.profile
		state.Profile = &p
	}
	if w.draft != nil {
		d := *w.draft
		state.Draft = &d
	}
	if w.delivery != nil {
		d := *w.delivery
		state.Delivery = &d
	}
	if w.schedule != nil {
		at := w.schedule.at
		state.ScheduledAt = &at
	}
	return state
}

// SubmitTarget validates and stores the target profile, completing the first
// stage. Missing required fields refuse advancement with ErrValidation.
func (w *WizardService) SubmitTarget(profile entities.TargetProfile) (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generating || w.sending {
		return w.snapshotLocked(), errs.ErrBusy
	}
	if missing := profile.MissingFields(); len(missing) > 0 {
		return w.snapshotLocked(), fmt.Errorf("%w: missing %s", errs.ErrValidation, strings.Join(missing, ", "))
	}

	w.profile = &profile
	w.completed = w.completed.Mark(drill.StageTargetInfo)
	w.stage = drill.StageEmailPreview
	w.draft = nil

	w.logger.Wizard().Info("target profile accepted", "name", profile.Name, "department", profile.Department)
	return w.snapshotLocked(), nil
}

// Generate produces a draft for the stored profile, replacing any previous
// draft. The optional suggestion steers regeneration. One generation may be
// in flight at a time.
func (w *WizardService) Generate(ctx context.Context, suggestion string) (WizardState, error) {
	w.mu.Lock()
	if w.stage != drill.StageEmailPreview {
		defer w.mu.Unlock()
		return w.snapshotLocked(), fmt.Errorf("%w: no target profile submitted", errs.ErrStageIncomplete)
	}
	if w.generating {
		defer w.mu.Unlock()
		return w.snapshotLocked(), errs.ErrBusy
	}
	w.generating = true
	profile := *w.profile
	w.mu.Unlock()

	marker := w.perfTracker.StartOperation("draft_generate")
	draft, err := w.generate(ctx, profile, suggestion)
	marker.SetSuccess(err == nil)
	marker.SetError(err)
	marker.Complete()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.generating = false
	if err != nil {
		w.logger.LogError(logging.ChannelDraft, "draft_generate", err)
		return w.snapshotLocked(), err
	}
	if w.stage != drill.StageEmailPreview {
		// A reset raced the generation; drop the stale draft.
		w.logger.Draft().Info("draft discarded, wizard was reset while generating", "subject", draft.Subject)
		return w.snapshotLocked(), nil
	}

	w.draft = &draft
	w.logger.Draft().Info("draft generated", "subject", draft.Subject, "scamLink", draft.ScamLink, "suggested", suggestion != "")
	return w.snapshotLocked(), nil
}

func (w *WizardService) generate(ctx context.Context, profile entities.TargetProfile, suggestion string) (entities.DraftEmail, error) {
	settings, err := w.store.GetSettings()
	if err != nil {
		return entities.DraftEmail{}, err
	}
	draft, err := w.generator.GenerateDraft(ctx, settings.GeminiAPIKey, profile, suggestion)
	if err != nil {
		return entities.DraftEmail{}, err
	}
	// Each draft gets its own decoy URL.
	return draft.WithScamLink(security.GenerateDecoyLink()), nil
}

// AcceptDraft freezes the current draft into delivery content and advances to
// the delivery stage.
func (w *WizardService) AcceptDraft() (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != drill.StageEmailPreview {
		return w.snapshotLocked(), fmt.Errorf("%w: not reviewing a draft", errs.ErrStageIncomplete)
	}
	if w.generating {
		return w.snapshotLocked(), errs.ErrBusy
	}
	if w.draft == nil || strings.TrimSpace(w.draft.Body) == "" {
		return w.snapshotLocked(), fmt.Errorf("%w: draft body is empty", errs.ErrValidation)
	}

	w.delivery = &entities.DeliveryContent{
		Subject:  w.draft.Subject,
		Body:     w.draft.Body,
		ScamLink: w.draft.ScamLink,
		Content:  entities.ComposeContent(*w.draft),
	}
	w.completed = w.completed.Mark(drill.StageEmailPreview)
	w.stage = drill.StageDelivery

	w.logger.Wizard().Info("draft accepted", "subject", w.delivery.Subject)
	return w.snapshotLocked(), nil
}

// GoBack steps to the previous stage. Returning from delivery keeps the
// target profile completed; returning from the preview clears everything
// completed so the flow restarts cleanly.
func (w *WizardService) GoBack() (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generating || w.sending {
		return w.snapshotLocked(), errs.ErrBusy
	}

	prev := w.stage.Prev()
	if prev == w.stage {
		return w.snapshotLocked(), nil
	}
	w.completed = w.completed.TruncateBefore(prev)
	w.stage = prev
	if prev == drill.StageTargetInfo {
		w.draft = nil
		w.delivery = nil
	}

	w.logger.Wizard().Info("stepped back", "stage", string(prev))
	return w.snapshotLocked(), nil
}

// Send validates the contact for the chosen channel, persists the drill
// record, and delivers it. The record stays persisted even when the gateway
// call fails. On success the wizard auto-resets after the display delay.
func (w *WizardService) Send(ctx context.Context, channel, contact, name string) (SendResult, error) {
	w.mu.Lock()
	if w.stage != drill.StageDelivery || w.delivery == nil {
		defer w.mu.Unlock()
		return SendResult{}, fmt.Errorf("%w: no accepted draft to deliver", errs.ErrStageIncomplete)
	}
	if w.sending {
		defer w.mu.Unlock()
		return SendResult{}, errs.ErrBusy
	}

	sender, ok := w.senders[channel]
	if !ok {
		defer w.mu.Unlock()
		return SendResult{}, fmt.Errorf("%w: unknown channel %q", errs.ErrValidation, channel)
	}
	if err := validateContact(channel, contact); err != nil {
		defer w.mu.Unlock()
		return SendResult{}, err
	}

	w.sending = true
	delivery := *w.delivery
	w.mu.Unlock()

	marker := w.perfTracker.StartOperation("drill_send")
	marker.AddMetadata("channel", channel)
	result, err := w.deliver(ctx, sender, delivery, contact, name)
	marker.SetSuccess(err == nil)
	marker.SetError(err)
	marker.Complete()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sending = false
	if err != nil {
		return result, err
	}

	w.lastDrillID = result.DrillID
	w.startResetTimerLocked()
	return result, nil
}

func (w *WizardService) deliver(ctx context.Context, sender messaging.Sender, delivery entities.DeliveryContent, contact, name string) (SendResult, error) {
	now := time.Now().UTC()
	record := entities.DrillRecord{
		ID:            security.GenerateULID(),
		TargetContact: contact,
		TargetName:    name,
		Subject:       delivery.Subject,
		Content:       delivery.Content,
		ScamLink:      delivery.ScamLink,
		CreatedAt:     now,
		SentAt:        &now,
		Analytics:     entities.DrillAnalytics{Status: entities.StatusSent},
	}
	if err := w.store.SaveDrill(record); err != nil {
		return SendResult{}, err
	}

	settings, err := w.store.GetSettings()
	if err != nil {
		return SendResult{}, err
	}

	msg := messaging.Message{
		DrillID:  record.ID,
		Contact:  contact,
		Name:     name,
		Subject:  delivery.Subject,
		Content:  delivery.Content,
		ScamLink: delivery.ScamLink,
	}
	simulated, err := sender.Send(ctx, settings.EmailConfig, msg)
	if err != nil {
		// The record is already persisted; the failed delivery stays visible
		// in the drill history.
		w.logger.LogError(logging.ChannelDelivery, "drill_send", err)
		return SendResult{DrillID: record.ID}, err
	}

	message := fmt.Sprintf("Mock drill sent successfully to %s", contact)
	if simulated {
		message = fmt.Sprintf("Mock drill simulated for %s (%s channel not configured)", contact, sender.Channel())
	}
	w.logger.Delivery().Info("drill delivered",
		"drillId", record.ID, "channel", sender.Channel(), "to", contact, "simulated", simulated)
	return SendResult{DrillID: record.ID, Simulated: simulated, Message: message}, nil
}

func validateContact(channel, contact string) error {
	switch channel {
	case "email":
		if !messaging.ValidEmail(contact) {
			return fmt.Errorf("%w: invalid email address", errs.ErrValidation)
		}
	default:
		if !messaging.ValidPhone(contact) {
			return fmt.Errorf("%w: phone number must include a country code", errs.ErrValidation)
		}
	}
	return nil
}

// ScheduleSend queues a send for a future time on an in-process timer. A
// pending schedule is replaced. Restarting the server drops the schedule.
func (w *WizardService) ScheduleSend(channel, contact, name string, at time.Time) (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != drill.StageDelivery || w.delivery == nil {
		return w.snapshotLocked(), fmt.Errorf("%w: no accepted draft to deliver", errs.ErrStageIncomplete)
	}
	if _, ok := w.senders[channel]; !ok {
		return w.snapshotLocked(), fmt.Errorf("%w: unknown channel %q", errs.ErrValidation, channel)
	}
	if err := validateContact(channel, contact); err != nil {
		return w.snapshotLocked(), err
	}
	delay := time.Until(at)
	if delay <= 0 {
		return w.snapshotLocked(), fmt.Errorf("%w: scheduled time must be in the future", errs.ErrValidation)
	}

	if w.schedule != nil {
		w.schedule.timer.Stop()
	}
	w.schedule = &scheduledSend{
		at: at,
		timer: time.AfterFunc(delay, func() {
			w.mu.Lock()
			w.schedule = nil
			w.mu.Unlock()
			if _, err := w.Send(context.Background(), channel, contact, name); err != nil {
				w.logger.LogError(logging.ChannelDelivery, "scheduled_send", err)
			}
		}),
	}

	w.logger.Wizard().Info("send scheduled", "channel", channel, "to", contact, "at", at)
	return w.snapshotLocked(), nil
}

// CancelSchedule aborts a pending scheduled send, if any.
func (w *WizardService) CancelSchedule() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelScheduleLocked()
	return w.snapshotLocked()
}

func (w *WizardService) cancelScheduleLocked() {
	if w.schedule != nil {
		w.schedule.timer.Stop()
		w.schedule = nil
		w.logger.Wizard().Info("scheduled send cancelled")
	}
}

// Reset returns the wizard to its initial stage, cancelling any pending
// schedule or auto-reset timer.
func (w *WizardService) Reset() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	return w.snapshotLocked()
}

func (w *WizardService) resetLocked() {
	w.cancelScheduleLocked()
	if w.resetTimer != nil {
		w.resetTimer.Stop()
		w.resetTimer = nil
	}
	w.stage = drill.StageTargetInfo
	w.completed = nil
	w.profile = nil
	w.draft = nil
	w.delivery = nil
	w.logger.Wizard().Info("wizard reset")
}

// startResetTimerLocked arms the post-send display delay, after which the
// wizard returns to the first stage for the next drill.
func (w *WizardService) startResetTimerLocked() {
	if w.resetTimer != nil {
		w.resetTimer.Stop()
	}
	w.resetTimer = time.AfterFunc(w.resetDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.sending || w.generating {
			return
		}
		w.resetLocked()
	})
}

// Stop cancels all outstanding timers. Called during shutdown.
func (w *WizardService) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelScheduleLocked()
	if w.resetTimer != nil {
		w.resetTimer.Stop()
		w.resetTimer = nil
	}
}
