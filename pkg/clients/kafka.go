package clients

import (
	"context"

	"github.com/pliu/splayseq/pkg/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// KgoClient is the part of *kgo.Client used to publish reports.
type KgoClient interface {
	kmsg.Requestor
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KadmClient is the part of *kadm.Client used to manage the report topic.
type KadmClient interface {
	ListTopics(ctx context.Context, topics ...string) (kadm.TopicDetails, error)
	ListBrokers(ctx context.Context) (kadm.BrokerDetails, error)
	Close()
}

var (
	_ KgoClient  = (*kgo.Client)(nil)
	_ KadmClient = (*kadm.Client)(nil)
)

// GetFranzGoClient returns a new franz-go kafka client
func GetFranzGoClient(cfg *config.KafkaConfig) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.SeedBrokers...),
		kgo.ClientID(cfg.GetClientID()),
		kgo.RecordRetries(3),
	}
	client, err := kgo.NewClient(opts...)
	return client, err
}
