package domain

import "context"

// StateRepository persists the whole collection plus the global settings.
// Mirroring the original key-value storage model, the unit of persistence is
// the full serialized collection and the settings blob, rewritten after every
// mutation and read once at startup.
type StateRepository interface {
	LoadContacts(ctx context.Context) ([]*Contact, error)
	SaveContacts(ctx context.Context, contacts []*Contact) error

	// LoadSettings returns nil when no settings were ever saved.
	LoadSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
