package mediaart

// Type designates what kind of media a piece of art belongs to. It selects
// the cache file name prefix and the directory search rules.
type Type int

const (
	// TypeNone is the zero value. It is not valid for any operation.
	TypeNone Type = iota

	// TypeAlbum is for music. Album art is shared between the tracks of
	// one album when their content is identical.
	TypeAlbum

	// TypeVideo is for movies and other videos.
	TypeVideo

	typeCount
)

// String returns the cache file name prefix for the type.
func (t Type) String() string {
	switch t {
	case TypeAlbum:
		return "album"
	case TypeVideo:
		return "video"
	default:
		return "invalid"
	}
}

// Valid returns true for types which may be used with the Processor.
func (t Type) Valid() bool {
	return t > TypeNone && t < typeCount
}
