package dto

type DashboardResponse struct {
	LibraryCount     int64 `json:"library_count"`
	PreferenceCount  int64 `json:"preference_count"`
	InteractionCount int64 `json:"interaction_count"`
	SubmissionCount  int64 `json:"submission_count"`
}

type EntityStats struct {
	Entity   string `json:"entity"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
	Total    int64  `json:"total"`
}

type RecountResponse struct {
	RowsUpdated int64 `json:"rows_updated"`
}
