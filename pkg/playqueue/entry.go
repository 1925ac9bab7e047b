package playqueue

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one track in a play queue.
type Entry struct {
	ID       uuid.UUID
	Title    string
	Artist   string
	Album    string
	Track    int
	Duration time.Duration
	AddedAt  time.Time
}

// Key is a column a queue can be sorted by.
type Key int

const (
	Unsorted Key = iota
	ByTitle
	ByArtist
	ByAlbum
	ByDuration
	ByAddedAt
)

var keyNames = map[Key]string{
	Unsorted:   "none",
	ByTitle:    "title",
	ByArtist:   "artist",
	ByAlbum:    "album",
	ByDuration: "duration",
	ByAddedAt:  "added",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey returns the Key named s, as printed by Key.String.
func ParseKey(s string) (Key, error) {
	for k, name := range keyNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return Unsorted, fmt.Errorf("unknown sort key %q", s)
}

// Compare orders two entries by k. Unsorted treats all entries as equal.
func (k Key) Compare(a, b *Entry) int {
	switch k {
	case ByTitle:
		return strings.Compare(a.Title, b.Title)
	case ByArtist:
		return cmp.Or(
			strings.Compare(a.Artist, b.Artist),
			strings.Compare(a.Album, b.Album),
			cmp.Compare(a.Track, b.Track),
		)
	case ByAlbum:
		return cmp.Or(
			strings.Compare(a.Album, b.Album),
			cmp.Compare(a.Track, b.Track),
		)
	case ByDuration:
		return cmp.Compare(a.Duration, b.Duration)
	case ByAddedAt:
		return a.AddedAt.Compare(b.AddedAt)
	}
	return 0
}
