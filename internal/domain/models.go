package domain

// Domain contains core models shared by the suite and the mock API.

// Post is the posts resource as served by JSONPlaceholder-style APIs.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
