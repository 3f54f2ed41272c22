package mediaart

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// matchTier ranks how likely a file in the media file's directory is to
// be the artwork searched for. Lower is better.
type matchTier int

const (
	matchExact matchTier = iota
	matchExactSmall
	matchSameDirectory

	matchTierCount
)

// artSearch carries the normalized, lowercased metadata a directory
// search matches file names against.
type artSearch struct {
	typ        Type
	artistDown string
	titleDown  string
}

func newArtSearch(typ Type, artist, title *string) *artSearch {
	search := &artSearch{typ: typ}

	if artist != nil {
		search.artistDown = StripInvalidEntities(*artist)
	}
	if title != nil {
		search.titleDown = StripInvalidEntities(*title)
	}

	return search
}

// classify places one lowercased file name into a match tier. The rules
// are checked in order and the first match wins.
func (s *artSearch) classify(nameDown string) matchTier {
	// Metadata which normalized to nothing matches no file name rather
	// than every file name.
	if (s.artistDown != "" && strings.Contains(nameDown, s.artistDown)) ||
		(s.titleDown != "" && strings.Contains(nameDown, s.titleDown)) {
		return matchExact
	}

	if s.typ == TypeAlbum {
		// Accept cover, front, folder and AlbumArt_{GUID}_Large as first
		// choice, AlbumArt_{GUID}_Small and AlbumArtSmall as second. A
		// plain AlbumArt without Small or Large is not accepted.
		if strings.Contains(nameDown, "cover") ||
			strings.Contains(nameDown, "front") ||
			strings.Contains(nameDown, "folder") {
			return matchExact
		}

		if strings.Contains(nameDown, "albumart") {
			if strings.Contains(nameDown, "large") {
				return matchExact
			} else if strings.Contains(nameDown, "small") {
				return matchExactSmall
			}
		}
	}

	if s.typ == TypeVideo {
		if strings.Contains(nameDown, "folder") ||
			strings.Contains(nameDown, "poster") {
			return matchExact
		}
	}

	// Lowest priority for any other image. Videos still might use it.
	return matchSameDirectory
}

// findByArtistAndTitle searches the parent directory of mediaPath for a
// file which looks like the artwork for it. Only JPEG and PNG files are
// considered. The best tier wins and within a tier the first name in
// directory-listing order does, which keeps selection deterministic.
// Same-directory matches are used for videos only, and only when the
// directory holds exactly one image: a directory full of unrelated
// pictures is no poster source.
//
// Returns the full path of the chosen file, or the empty string when
// nothing qualified.
func findByArtistAndTitle(
	fsys afero.Fs,
	mediaPath string,
	typ Type,
	artist, title *string,
) string {
	dirname := filepath.Dir(mediaPath)

	entries, err := afero.ReadDir(fsys, dirname)
	if err != nil {
		log.Printf("media art directory could not be opened: %s", err)
		return ""
	}

	search := newArtSearch(typ, artist, title)

	var tiers [matchTierCount][]string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		nameDown := strings.ToLower(entry.Name())
		if !strings.HasSuffix(nameDown, "jpeg") &&
			!strings.HasSuffix(nameDown, "jpg") &&
			!strings.HasSuffix(nameDown, "png") {
			continue
		}

		tier := search.classify(nameDown)
		tiers[tier] = append(tiers[tier], entry.Name())
	}

	var artFileName string
	switch {
	case len(tiers[matchExact]) > 0:
		artFileName = tiers[matchExact][0]
	case len(tiers[matchExactSmall]) > 0:
		artFileName = tiers[matchExactSmall][0]
	case typ == TypeVideo && len(tiers[matchSameDirectory]) == 1:
		artFileName = tiers[matchSameDirectory][0]
	}

	if artFileName == "" {
		return ""
	}

	return filepath.Join(dirname, artFileName)
}
