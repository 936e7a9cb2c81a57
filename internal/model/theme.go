package model

import "time"

// HumorTheme is a read-only catalog entry. ID is stable and is the ordering key.
type HumorTheme struct {
	ID          int       `json:"id"                    db:"id"`
	Name        string    `json:"name"                  db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt"             db:"created_datetime_utc"`
}

// ThemeView is a theme with its display icon.
type ThemeView struct {
	HumorTheme
	Icon string `json:"icon"`
}
