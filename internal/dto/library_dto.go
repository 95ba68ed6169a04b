package dto

import (
	"time"

	"github.com/gmattworld/applibry-api/internal/models"
)

// LibraryApp is an app as seen from a user's library.
type LibraryApp struct {
	models.App
	AddedAt time.Time `json:"added_at"`
}

// PreferredCategory is a category as seen from a user's preferences.
type PreferredCategory struct {
	models.Category
	AddedAt time.Time `json:"added_at"`
}
