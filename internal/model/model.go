// Package model defines the domain types used across the application.
package model

import "time"

// Flag is a tri-state boolean. The zero value is Unset, which is distinct
// from an explicit False: an archived post has Active == FlagFalse, while a
// post that was never archived keeps Active == FlagUnset.
type Flag int8

// Flag states.
const (
	FlagUnset Flag = iota
	FlagFalse
	FlagTrue
)

// FlagOf converts a plain boolean to an explicit Flag value.
func FlagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// Bool collapses the flag to a boolean, treating Unset as false.
func (f Flag) Bool() bool {
	return f == FlagTrue
}

// String returns "unset", "false" or "true".
func (f Flag) String() string {
	switch f {
	case FlagFalse:
		return "false"
	case FlagTrue:
		return "true"
	default:
		return "unset"
	}
}

// Post is a single content item synchronized from the remote feed.
// Link is the natural key and never changes after creation.
type Post struct {
	Link       string
	Title      string
	PubDate    time.Time
	Categories []string
	Authors    []string
	Active     Flag
	Favourite  Flag
	Seen       Flag
	CreatedAt  time.Time
}

// Archived reports whether the post was explicitly archived.
// An unset Active flag counts as not archived.
func (p Post) Archived() bool {
	return p.Active == FlagFalse
}

// HasCategory reports whether the post carries the given category name.
func (p Post) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}
