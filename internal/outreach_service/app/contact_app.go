package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

// Application owns the in-memory contact collection and the global settings.
// Every mutation happens under its lock and is followed by an explicit write
// of the whole collection through the state repository; the repository is the
// durable mirror, never the source of truth while the process runs.
type Application struct {
	mu       sync.Mutex
	contacts []*domain.Contact
	settings domain.Settings

	repo        domain.StateRepository
	scheduler   *followUpScheduler
	logger      *slog.Logger
	countryCode string
}

// NewApplication creates an Application with the given defaults. Call Load
// before serving requests.
func NewApplication(repo domain.StateRepository, logger *slog.Logger, countryCode string, defaults domain.Settings) *Application {
	return &Application{
		repo:        repo,
		scheduler:   newFollowUpScheduler(),
		logger:      logger.With("component", "contact_app"),
		countryCode: countryCode,
		settings:    defaults,
	}
}

// Load reads the persisted collection and settings. Missing settings keep the
// configured defaults.
func (a *Application) Load(ctx context.Context) error {
	contacts, err := a.repo.LoadContacts(ctx)
	if err != nil {
		return err
	}
	settings, err := a.repo.LoadSettings(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.contacts = contacts
	if settings != nil {
		if settings.MessageTemplate != "" {
			a.settings.MessageTemplate = settings.MessageTemplate
		}
		if settings.FollowUpDelaySeconds >= 1 {
			a.settings.FollowUpDelaySeconds = settings.FollowUpDelaySeconds
		}
	}
	a.logger.InfoContext(ctx, "State loaded", "contacts", len(contacts), "settings_persisted", settings != nil)
	return nil
}

// Close cancels all pending follow-up timers.
func (a *Application) Close() {
	a.scheduler.Stop()
}

// ListContacts returns the collection in display order. The returned contacts
// are deep copies; the stored records are only ever touched under the lock.
func (a *Application) ListContacts(ctx context.Context) []*domain.Contact {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*domain.Contact, len(a.contacts))
	for i, c := range a.contacts {
		out[i] = c.Clone()
	}
	return out
}

// GetContact returns a copy of the contact with the given ID.
func (a *Application) GetContact(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, c := a.findLocked(id)
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

// AddContact normalizes the phone, creates the contact and prepends it to the
// collection.
func (a *Application) AddContact(ctx context.Context, name, rawPhone, customMessage string) (*domain.Contact, error) {
	phone, err := domain.NormalizePhone(rawPhone, a.countryCode)
	if err != nil {
		return nil, err
	}
	c := domain.NewContact(uuid.New(), name, phone)
	c.CustomMessage = customMessage

	a.mu.Lock()
	a.contacts = append([]*domain.Contact{c}, a.contacts...)
	out := c.Clone()
	a.mu.Unlock()

	a.persistContacts(ctx)
	a.logger.InfoContext(ctx, "Contact added", "contact_id", out.ID, "phone", out.Phone)
	return out, nil
}

// UpdateContactParams carries the optional edits; nil means keep as is.
type UpdateContactParams struct {
	Name          *string
	Phone         *string
	CustomMessage *string
}

// UpdateContact edits a contact in place. A non-nil Phone is an explicit
// re-entry and goes through normalization again.
func (a *Application) UpdateContact(ctx context.Context, id uuid.UUID, params UpdateContactParams) (*domain.Contact, error) {
	var phone string
	if params.Phone != nil {
		var err error
		phone, err = domain.NormalizePhone(*params.Phone, a.countryCode)
		if err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	_, c := a.findLocked(id)
	if c == nil {
		a.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Phone != nil {
		c.Phone = phone
	}
	if params.CustomMessage != nil {
		c.CustomMessage = *params.CustomMessage
	}
	c.UpdatedAt = time.Now().UTC()
	out := c.Clone()
	a.mu.Unlock()

	a.persistContacts(ctx)
	return out, nil
}

// DeleteContact removes a contact and cancels any pending follow-up for it.
func (a *Application) DeleteContact(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	idx, c := a.findLocked(id)
	if c == nil {
		a.mu.Unlock()
		return domain.ErrNotFound
	}
	a.contacts = append(a.contacts[:idx], a.contacts[idx+1:]...)
	a.mu.Unlock()

	a.scheduler.Cancel(id)
	a.persistContacts(ctx)
	a.logger.InfoContext(ctx, "Contact deleted", "contact_id", id)
	return nil
}

// SetStatus applies a manual status override. It cancels the pending
// follow-up task so the automatic transition can never undo a user decision.
func (a *Application) SetStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) (*domain.Contact, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	a.mu.Lock()
	_, c := a.findLocked(id)
	if c == nil {
		a.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	out := c.Clone()
	a.mu.Unlock()

	a.scheduler.Cancel(id)
	a.persistContacts(ctx)
	return out, nil
}

// DispatchResult is what a dispatch hands back to the caller: the deep link
// to open and the contact in its post-dispatch state.
type DispatchResult struct {
	Link    string          `json:"link"`
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

// Dispatch renders the outbound message for a contact (per-contact override,
// else the global template), builds the wa.me link, moves the contact to
// message_sent and arms the delayed transition to awaiting_reply.
func (a *Application) Dispatch(ctx context.Context, id uuid.UUID) (*DispatchResult, error) {
	a.mu.Lock()
	_, c := a.findLocked(id)
	if c == nil {
		a.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	template := a.settings.MessageTemplate
	if c.CustomMessage != "" {
		template = c.CustomMessage
	}
	message := domain.RenderMessage(template, c)
	link := domain.WhatsAppLink(c.Phone, message)

	c.Status = domain.StatusMessageSent
	c.UpdatedAt = time.Now().UTC()
	delay := time.Duration(a.settings.FollowUpDelaySeconds) * time.Second
	out := c.Clone()
	a.mu.Unlock()

	a.persistContacts(ctx)
	a.scheduler.Schedule(id, delay, func() { a.markAwaitingReply(id) })
	dispatchesTotal.Inc()
	a.logger.InfoContext(ctx, "Message dispatched", "contact_id", id, "follow_up_delay", delay)

	return &DispatchResult{Link: link, Message: message, Contact: out}, nil
}

// markAwaitingReply is the delayed transition. The status guard makes a late
// fire after a manual change an idempotent no-op.
func (a *Application) markAwaitingReply(id uuid.UUID) {
	a.mu.Lock()
	_, c := a.findLocked(id)
	if c == nil || c.Status != domain.StatusMessageSent {
		a.mu.Unlock()
		return
	}
	c.Status = domain.StatusAwaitingReply
	c.UpdatedAt = time.Now().UTC()
	a.mu.Unlock()

	ctx := context.Background()
	a.persistContacts(ctx)
	followUpTransitionsTotal.Inc()
	a.logger.Info("Contact moved to awaiting_reply", "contact_id", id)
}

// ReplaceCollection swaps in a freshly imported collection. There is no merge:
// the previous records and their pending follow-ups are gone. The stored
// records are copies, so the caller's slice stays detached.
func (a *Application) ReplaceCollection(ctx context.Context, contacts []*domain.Contact) {
	a.scheduler.Stop()

	stored := make([]*domain.Contact, len(contacts))
	for i, c := range contacts {
		stored[i] = c.Clone()
	}

	a.mu.Lock()
	a.contacts = stored
	a.mu.Unlock()

	a.persistContacts(ctx)
	a.logger.InfoContext(ctx, "Collection replaced", "contacts", len(contacts))
}

// Settings returns the current global settings.
func (a *Application) Settings(ctx context.Context) domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// UpdateSettings stores the global message template and follow-up delay.
// The delay floor is one second.
func (a *Application) UpdateSettings(ctx context.Context, s domain.Settings) domain.Settings {
	if s.FollowUpDelaySeconds < 1 {
		s.FollowUpDelaySeconds = 1
	}

	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()

	if err := a.repo.SaveSettings(ctx, &s); err != nil {
		a.logger.ErrorContext(ctx, "Failed to persist settings", "error", err)
	}
	return s
}

// CountryCode exposes the configured phone country code to the import layer.
func (a *Application) CountryCode() string {
	return a.countryCode
}

func (a *Application) findLocked(id uuid.UUID) (int, *domain.Contact) {
	for i, c := range a.contacts {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

// persistContacts mirrors the collection to durable storage. The snapshot is a
// deep copy taken under the lock, so the repository marshals it while other
// goroutines keep mutating the stored records. Persistence is fire-and-forget:
// a failed write is logged, the in-memory state stays authoritative and the
// next mutation rewrites everything anyway.
func (a *Application) persistContacts(ctx context.Context) {
	a.mu.Lock()
	snapshot := make([]*domain.Contact, len(a.contacts))
	for i, c := range a.contacts {
		snapshot[i] = c.Clone()
	}
	a.mu.Unlock()

	if err := a.repo.SaveContacts(ctx, snapshot); err != nil {
		a.logger.ErrorContext(ctx, "Failed to persist contacts", "error", err)
	}
}
