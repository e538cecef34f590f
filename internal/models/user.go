package models

// User represents the authenticated identity as confirmed by the backend.
//
// Replaced wholesale on every auth check; never mutated field-by-field.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credentials carries a sign-in request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration carries a sign-up request.
//
// Password2 is the confirmation field the backend validates against Password.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}
