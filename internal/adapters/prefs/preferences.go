package prefs

// Presentation preference keys, matching the mobile app's defaults store.
const (
	keyFontSize             = "quoteFontSize"
	keyTheme                = "appTheme"
	keyAccentColor          = "accentColor"
	keyNotificationsEnabled = "notificationsEnabled"
	keyNotificationTime     = "notificationTime"
)

// Presentation defaults applied when a preference has never been set.
const (
	defaultFontSize         = 16.0
	defaultTheme            = "Dark"
	defaultAccentColor      = "Yellow"
	defaultNotificationTime = "09:00"
)

// FontSize returns the quote display font size in points.
// Implements ports.Preferences.
func (s *Store) FontSize() float64 {
	if v := s.getFloat(keyFontSize); v > 0 {
		return v
	}

	return defaultFontSize
}

// SetFontSize implements ports.Preferences.
func (s *Store) SetFontSize(size float64) error {
	return s.set(map[string]any{keyFontSize: size})
}

// Theme implements ports.Preferences.
func (s *Store) Theme() string {
	if v := s.getString(keyTheme); v != "" {
		return v
	}

	return defaultTheme
}

// SetTheme implements ports.Preferences.
func (s *Store) SetTheme(theme string) error {
	return s.set(map[string]any{keyTheme: theme})
}

// AccentColor implements ports.Preferences.
func (s *Store) AccentColor() string {
	if v := s.getString(keyAccentColor); v != "" {
		return v
	}

	return defaultAccentColor
}

// SetAccentColor implements ports.Preferences.
func (s *Store) SetAccentColor(color string) error {
	return s.set(map[string]any{keyAccentColor: color})
}

// NotificationsEnabled implements ports.Preferences.
func (s *Store) NotificationsEnabled() bool {
	return s.getBool(keyNotificationsEnabled)
}

// SetNotificationsEnabled implements ports.Preferences.
func (s *Store) SetNotificationsEnabled(enabled bool) error {
	return s.set(map[string]any{keyNotificationsEnabled: enabled})
}

// NotificationTime returns the daily notification time as "HH:MM".
// Implements ports.Preferences.
func (s *Store) NotificationTime() string {
	if v := s.getString(keyNotificationTime); v != "" {
		return v
	}

	return defaultNotificationTime
}

// SetNotificationTime implements ports.Preferences.
func (s *Store) SetNotificationTime(hhmm string) error {
	return s.set(map[string]any{keyNotificationTime: hhmm})
}
