package models

import "time"

// CoachingSession is one persisted prompt/response exchange.
type CoachingSession struct {
	ID int64
	// UserID is nil for sessions created by anonymous callers.
	UserID   *int64
	Title    string
	Prompt   string
	Response string
	// Date drives past/future filtering; CreatedAt is set once by the database.
	Date      time.Time
	CreatedAt time.Time
	Tags      []Tag
}

// SessionFilter narrows the global session listing. Nil/empty fields are
// not applied; the rest combine with AND.
type SessionFilter struct {
	Past    *bool
	Tag     string
	Search  string
	DateGte *time.Time
	DateLte *time.Time
	// OwnerID restricts the listing to one user.
	OwnerID *int64
	// Now is the reference instant for Past.
	Now time.Time
}

// PageQuery is a decoded keyset page request over session IDs, which are
// listed in descending order.
type PageQuery struct {
	Limit    int
	AfterID  int64
	BeforeID int64
	// Backward selects the page that ends right before BeforeID.
	Backward bool
}

// SessionPage is one page of the global listing plus the information a
// Relay connection needs.
type SessionPage struct {
	Sessions        []*CoachingSession
	HasNextPage     bool
	HasPreviousPage bool
	TotalCount      int
}
