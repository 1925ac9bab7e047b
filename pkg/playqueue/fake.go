package playqueue

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// FakeEntries returns n made-up entries. The same seed gives the same
// entries.
func FakeEntries(n int, seed int64) []*Entry {
	f := gofakeit.New(seed)
	albums := make([]string, 0, 4)
	for range 4 {
		albums = append(albums, titleCase(f.Adjective()+" "+f.Noun()))
	}

	entries := make([]*Entry, 0, n)
	for range n {
		entries = append(entries, &Entry{
			ID:       uuid.MustParse(f.UUID()),
			Title:    titleCase(f.Adjective() + " " + f.Word()),
			Artist:   f.Name(),
			Album:    albums[f.Number(0, len(albums)-1)],
			Track:    f.Number(1, 12),
			Duration: time.Duration(f.Number(90, 420)) * time.Second,
		})
	}
	return entries
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
