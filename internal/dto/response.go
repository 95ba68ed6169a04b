package dto

// Response is the success envelope of every endpoint.
type Response struct {
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code"`
}

// CursorResponse is returned by cursor-paginated listings.
type CursorResponse struct {
	Response
	NextCursor *string `json:"next_cursor"`
}

// PagedResponse is returned by offset-paginated listings.
type PagedResponse struct {
	Response
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
}

type ErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
