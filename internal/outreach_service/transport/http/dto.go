package http

// LoginRequest defines the structure for the single-admin login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse defines the structure for a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

// AddContactRequest defines the structure for a manual contact add.
type AddContactRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// UpdateContactRequest carries partial edits; absent fields are untouched.
// A present phone is an explicit re-entry and is normalized again.
type UpdateContactRequest struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	CustomMessage *string `json:"custom_message,omitempty"`
}

// SetStatusRequest defines the structure for a manual status override.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SettingsRequest defines the structure for updating the global settings.
type SettingsRequest struct {
	MessageTemplate      string `json:"message_template" validate:"required"`
	FollowUpDelaySeconds int    `json:"follow_up_delay_seconds" validate:"required,min=1"`
}

// ImportResponse summarizes an import for the caller.
type ImportResponse struct {
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings,omitempty"`
}

// GenericErrorResponse for API errors.
type GenericErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
