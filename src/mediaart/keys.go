package mediaart

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// spaceDigest stands in for a wholly absent artist or title. It is the
// MD5 of a single space and is distinct from the digest of an empty
// string, which is what a present-but-blank field hashes to.
const spaceDigest = "7215ee9c7d9dc229d2921a40e899ec5f"

// Key is the derived identity of one cache artifact: two lowercase
// hexadecimal MD5 digests. It fully determines the artifact file name
// and is immutable once computed.
type Key struct {
	ArtistDigest string
	TitleDigest  string
}

// checksum returns the lowercase hex MD5 digest of data.
func checksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// fieldDigest hashes one present metadata field: normalize, NFKD
// decompose, case fold once more after decomposition and digest the
// UTF-8 bytes.
func fieldDigest(field string) string {
	stripped := StripInvalidEntities(field)
	decomposed := norm.NFKD.String(stripped)

	return checksum([]byte(strings.ToLower(decomposed)))
}

// DeriveKey computes the cache identity for the given artist and title.
// Either may be nil when unknown. When both are nil there is no identity
// to derive and ok is false.
//
// When only the title is known its digest takes the first slot and the
// sentinel the second, while an absent title puts the sentinel in the
// second slot behind the artist digest. The asymmetry is a long-standing
// on-disk contract shared with other implementations of the cache and
// must be preserved exactly.
func DeriveKey(artist, title *string) (key Key, ok bool) {
	if artist == nil && title == nil {
		return Key{}, false
	}

	switch {
	case artist == nil:
		key.ArtistDigest = fieldDigest(*title)
		key.TitleDigest = spaceDigest
	case title == nil:
		key.ArtistDigest = fieldDigest(*artist)
		key.TitleDigest = spaceDigest
	default:
		key.ArtistDigest = fieldDigest(*artist)
		key.TitleDigest = fieldDigest(*title)
	}

	return key, true
}

// Filename returns the cache file name for the key. An empty prefix
// defaults to "album".
func (k Key) Filename(prefix string) string {
	if prefix == "" {
		prefix = "album"
	}

	return prefix + "-" + k.ArtistDigest + "-" + k.TitleDigest + ".jpeg"
}

// String returns a pointer to s. It is a convenience for building the
// optional artist and title arguments accepted throughout this package.
func String(s string) *string {
	return &s
}
