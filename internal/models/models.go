package models

// User is a registered account. HashedPassword never leaves the process;
// the json tag keeps it out of every response body.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
	IsAdmin        bool   `json:"is_admin"`
}

// Task belongs to exactly one user. OwnerID is set at creation and never
// changes. Description is nullable and round-trips JSON null.
type Task struct {
	ID          int     `json:"id"`
	OwnerID     int     `json:"owner_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}
