package models

// Tag is a global label. Name keeps the casing of whoever created it first;
// uniqueness is case-insensitive.
type Tag struct {
	ID   int64
	Name string
}
