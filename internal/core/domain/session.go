package domain

type UserRole string

const (
	Admin   UserRole = "admin"
	AppUser UserRole = "user"
)

type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// Session is the authenticated identity held between login and logout.
// The zero value is the logged-out session.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// TokenPayload is what a verified bearer token asserts.
type TokenPayload struct {
	ID     string
	UserID string
	Role   UserRole
}
