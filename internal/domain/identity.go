package domain

// Identity represents the authenticated principal behind a request. It is
// built once per request from upstream-validated claims and never mutated.
type Identity struct {
	UserID      string
	Email       string
	Username    string
	DisplayName string
}
