package models

// Session is the authenticated state of the client. Token and User are
// always set or cleared together.
type Session struct {
	User  *User
	Token string
}

func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}
