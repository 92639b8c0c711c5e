package models

// Identity is the caller on whose behalf an operation runs. The zero value
// is the anonymous caller.
type Identity struct {
	UserID   int64
	Username string
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}
