package events

// Ownership tags a reference to an event held by a collection, telling whether the collection owns
// the reference (and must eventually Release it or hand it over) or only borrows it from someone
// else.
type Ownership int

//go:generate go tool enumer -type Ownership -transform=lower -output=gen_ownership_enumer.go ownership.go

const (
	// Borrowed references belong to someone else: they must not be released by the holder.
	Borrowed Ownership = iota

	// Owned references must be released, or handed over, by the holder.
	Owned
)

