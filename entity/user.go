package entity

// User is an authenticated client of the reporting API.
type User struct {
	Username string `json:"username"`
}
