package main

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/pliu/splayseq/pkg/playqueue"
)

type queueDemoOptions struct {
	entries int
	seed    int64
	sortKey string
}

func newQueueDemoCommand(root *rootOptions) *cobra.Command {
	opts := &queueDemoOptions{}
	cmd := &cobra.Command{
		Use:   "queue-demo",
		Short: "Build a fake play queue, sort it, shuffle it and split it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stopMetrics := startMetricsServer(root.metricsPort)
			defer stopMetrics()
			return runQueueDemo(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.entries, "entries", 12, "Number of fake entries to queue")
	flags.Int64Var(&opts.seed, "seed", 1, "Seed for the fake entries and the shuffle")
	flags.StringVar(&opts.sortKey, "sort", playqueue.ByArtist.String(), "Sort key: title, artist, album, duration or added")
	return cmd
}

func runQueueDemo(w io.Writer, opts *queueDemoOptions) error {
	key, err := playqueue.ParseKey(opts.sortKey)
	if err != nil {
		return err
	}
	if opts.entries < 0 {
		return fmt.Errorf("entries must not be negative, got %d", opts.entries)
	}

	queue := playqueue.New("main")
	defer queue.Close()
	upNext := playqueue.New("up-next")
	defer upNext.Close()

	for _, e := range playqueue.FakeEntries(opts.entries, opts.seed) {
		if err := queue.Add(e); err != nil {
			return err
		}
	}

	queue.SortBy(key)
	renderQueue(w, fmt.Sprintf("%s, sorted by %s", queue.Name(), key), queue)

	queue.Shuffle(rand.New(rand.NewSource(opts.seed)))
	renderQueue(w, queue.Name()+", shuffled", queue)

	// Drag the first quarter of the queue into up-next.
	if err := queue.MoveRange(0, queue.Len()/4, upNext, 0); err != nil {
		return err
	}
	renderQueue(w, queue.Name(), queue)
	renderQueue(w, upNext.Name(), upNext)

	log.Debug().Int("main", queue.Len()).Int("up_next", upNext.Len()).Msg("Queue demo finished")
	return nil
}

func renderQueue(w io.Writer, title string, q *playqueue.Queue) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	tbl.AppendHeader(table.Row{"#", "Title", "Artist", "Album", "Track", "Length"})
	for i, e := range q.Entries() {
		tbl.AppendRow(table.Row{i + 1, e.Title, e.Artist, e.Album, e.Track, formatLength(e.Duration)})
	}
	tbl.Render()
}

func formatLength(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
