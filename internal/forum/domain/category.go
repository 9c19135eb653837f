package domain

import "time"

// Category privacy and lock states. Stored as strings so the DB rows read
// the same as the API payloads.
const (
	PrivacyPrivate    = "private"
	PrivacyNonPrivate = "non_private"

	AccessLocked   = "locked"
	AccessUnlocked = "unlocked"
)

type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PrivacyStatus string    `json:"privacy_status"`
	AccessStatus  string    `json:"access_status"`
	CreatedAt     time.Time `json:"created_on"`
}

// IsPrivate reports whether the category requires an access grant to read.
func (c Category) IsPrivate() bool { return c.PrivacyStatus == PrivacyPrivate }

// IsLocked reports whether new topics may no longer be created in the category.
func (c Category) IsLocked() bool { return c.AccessStatus == AccessLocked }

// CategoryAccess is a per-user grant on a private category.
type CategoryAccess struct {
	CategoryID  string `json:"category_id"`
	UserID      string `json:"user_id"`
	WriteAccess bool   `json:"write_access"`
}

// PrivilegedUser is a row of the admin listing for a private category.
type PrivilegedUser struct {
	Username    string `json:"username"`
	AccessLevel string `json:"access_level"` // "read only" or "read and write"
}
