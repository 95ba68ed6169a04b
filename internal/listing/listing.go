// Package listing builds the filtered, ordered and bounded queries behind the
// list endpoints. Cursor listings over-fetch one row to learn whether a next
// page exists. Offset listings report a total instead.
package listing

import (
	"strings"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/cursor"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Scope is a reusable GORM query fragment.
type Scope = func(*gorm.DB) *gorm.DB

// Params are the inputs of a cursor listing.
type Params struct {
	Search       string
	Category     string
	Cursor       string
	Limit        int
	Personalised bool
	Trending     bool

	// PublishedOnly restricts app listings to what anonymous visitors may see.
	PublishedOnly bool
}

// NormalizeLimit coerces n into [1, MaxLimit], using DefaultLimit for n < 1.
func NormalizeLimit(n int) int {
	if n < 1 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Page is one window of a cursor listing.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// Trim turns limit+1 fetched rows into a page. When the extra row exists the
// cursor is built from the last row kept and the extra row is dropped.
func Trim[T any](rows []T, limit int, cursorOf func(T) string) Page[T] {
	if len(rows) <= limit {
		return Page[T]{Items: rows}
	}
	next := cursorOf(rows[limit-1])
	return Page[T]{Items: rows[:limit], NextCursor: &next}
}

// Search matches term as a case-insensitive substring of column. Wildcards in
// term are matched literally.
func Search(column, term string) Scope {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ByCategory filters column by an exact category id. An empty raw value is no
// filter. A malformed id is an InvalidFilter error. An unknown id simply matches
// nothing.
func ByCategory(column, raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return noop, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.InvalidFilter("Invalid category identifier")
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", id)
	}, nil
}

// After bounds an ascending single-key listing to rows past the cursor.
func After(column, token string) (Scope, error) {
	if token == "" {
		return noop, nil
	}
	value, err := cursor.Decode(token)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" > ?", value)
	}, nil
}

// AfterRecent bounds a listing ordered by timeColumn DESC, nameColumn ASC.
func AfterRecent(timeColumn, nameColumn, token string) (Scope, error) {
	if token == "" {
		return noop, nil
	}
	at, name, err := cursor.DecodeCompound(token)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(("+timeColumn+" < ?) OR ("+timeColumn+" = ? AND "+nameColumn+" > ?))",
			at, at, name,
		)
	}, nil
}

func noop(db *gorm.DB) *gorm.DB { return db }
