package models

// NotificationPreferences per delivery channel
type NotificationPreferences struct {
	Email     *bool `json:"email,omitempty"`
	Push      *bool `json:"push,omitempty"`
	Websocket *bool `json:"websocket,omitempty"`
}

// Preferences is the user settings blob stored as JSONB
// Every field is optional, absent fields keep their defaults
type Preferences struct {
	DefaultMode   *string                  `json:"default_mode,omitempty" validate:"omitempty,oneof=driver passenger"`
	Smoking       *bool                    `json:"smoking,omitempty"`
	Pets          *bool                    `json:"pets,omitempty"`
	Notifications *NotificationPreferences `json:"notifications,omitempty"`
	Language      *string                  `json:"language,omitempty" validate:"omitempty,oneof=en he"`
	Theme         *string                  `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
}

// DefaultModeOrFallback returns the preferred UI mode, "passenger" if not set
func (p *Preferences) DefaultModeOrFallback() string {
	if p == nil || p.DefaultMode == nil {
		return RolePassenger
	}
	return *p.DefaultMode
}
