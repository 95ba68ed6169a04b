// Package association maintains many-to-many link rows together with the
// denormalized counters that mirror their cardinality.
package association

// Link describes one association table and the counter it feeds.
type Link struct {
	Table        string // association table, e.g. user_apps
	OwnerColumn  string // e.g. user_id
	TargetColumn string // e.g. app_id

	OwnerTable   string // checked for existence when set
	OwnerEntity  string
	TargetTable  string
	TargetEntity string

	// CounterColumn lives on TargetTable. Empty means no counter.
	CounterColumn string

	DuplicateMessage string
	MissingMessage   string
}

var (
	UserApps = Link{
		Table:            "user_apps",
		OwnerColumn:      "user_id",
		TargetColumn:     "app_id",
		OwnerTable:       "users",
		OwnerEntity:      "User",
		TargetTable:      "apps",
		TargetEntity:     "App",
		CounterColumn:    "subscribers",
		DuplicateMessage: "App already in library",
		MissingMessage:   "App not in library",
	}

	UserCategories = Link{
		Table:            "user_categories",
		OwnerColumn:      "user_id",
		TargetColumn:     "category_id",
		OwnerTable:       "users",
		OwnerEntity:      "User",
		TargetTable:      "categories",
		TargetEntity:     "Category",
		CounterColumn:    "subscribers",
		DuplicateMessage: "Preference already added",
		MissingMessage:   "Category not in preference",
	}

	RolePermissions = Link{
		Table:            "role_permissions",
		OwnerColumn:      "role_id",
		TargetColumn:     "permission_id",
		OwnerTable:       "roles",
		OwnerEntity:      "Role",
		TargetTable:      "permissions",
		TargetEntity:     "Permission",
		DuplicateMessage: "Permission already granted to role",
		MissingMessage:   "Permission not granted to role",
	}
)

// CategoryApps is not a link table: apps reference their category directly.
// It only describes where categories.app_count comes from.
var CategoryApps = Link{
	Table:         "apps",
	TargetColumn:  "category_id",
	TargetTable:   "categories",
	TargetEntity:  "Category",
	CounterColumn: "app_count",
}

// Counters lists every denormalized counter and its backing rows, for Recount.
var Counters = []Link{UserApps, UserCategories, CategoryApps}
