// Package query defines the named read views over the post store.
//
// A Query is a value describing a filter; the storage layer translates it
// into SQL. The tri-state rules (an unset flag counting as active, not
// favourited, not seen) live in that translation, so every view constructor
// here stays a plain description.
package query

// Cond is a tri-valued filter condition on one post flag.
type Cond int8

// Condition values. Any skips the flag entirely.
const (
	Any Cond = iota
	Yes
	No
)

// Query describes a filtered, pub-date-descending view of stored posts.
// Archived, Favourite and Seen filter on the logical reading of the
// corresponding flag, not its raw stored value: Archived == No matches
// posts whose active flag is true or unset, Seen == No matches posts whose
// seen flag is false or unset.
type Query struct {
	Archived  Cond
	Favourite Cond
	Seen      Cond
	Category  string
}

// Active returns the view of posts that have not been archived.
func Active() Query {
	return Query{Archived: No}
}

// Archived returns the view of posts that were explicitly archived.
func Archived() Query {
	return Query{Archived: Yes}
}

// Favourites returns the active posts tagged as favourite.
func Favourites() Query {
	return Query{Archived: No, Favourite: Yes}
}

// ByCategory returns the active posts carrying the given category.
func ByCategory(name string) Query {
	return Query{Archived: No, Category: name}
}

// Unseen returns the posts not yet seen by the user, archived ones included.
func Unseen() Query {
	return Query{Seen: No}
}
