// Package reporter delivers bench reports to their destinations.
package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/phuslu/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pliu/splayseq/pkg/bench"
	"github.com/pliu/splayseq/pkg/clients"
	"github.com/pliu/splayseq/pkg/metrics"
)

type Reporter interface {
	Publish(ctx context.Context, report *bench.Report) error
}

// WriterReporter renders reports to a writer.
type WriterReporter struct {
	w      io.Writer
	format string
}

func NewWriterReporter(w io.Writer, format string) *WriterReporter {
	return &WriterReporter{w: w, format: format}
}

func (wr *WriterReporter) Publish(_ context.Context, report *bench.Report) error {
	return report.Render(wr.w, wr.format)
}

// KafkaReporter produces each report as one JSON record keyed by run ID.
type KafkaReporter struct {
	client clients.KgoClient
	topic  string
}

func NewKafkaReporter(client clients.KgoClient, topic string) *KafkaReporter {
	return &KafkaReporter{client: client, topic: topic}
}

func (kr *KafkaReporter) Publish(ctx context.Context, report *bench.Report) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.RunID, err)
	}
	record := &kgo.Record{
		Topic: kr.topic,
		Key:   []byte(report.RunID),
		Value: value,
	}

	produced := make(chan error, 1)
	kr.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		produced <- err
	})
	select {
	case err = <-produced:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		err = kr.client.Flush(ctx)
	}
	if err != nil {
		metrics.ReportPublishFailureCount.Inc()
		return fmt.Errorf("publish report %s to %s: %w", report.RunID, kr.topic, err)
	}

	log.Info().Str("run_id", report.RunID).Str("topic", kr.topic).Msg("Published bench report")
	return nil
}

func (kr *KafkaReporter) Close() {
	kr.client.Close()
}
