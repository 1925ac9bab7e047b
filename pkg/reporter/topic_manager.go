package reporter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/phuslu/log"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/pliu/splayseq/pkg/clients"
	"github.com/pliu/splayseq/pkg/config"
	"github.com/pliu/splayseq/pkg/utils"
)

const (
	defaultPollInterval = 200 * time.Millisecond
	maxPolls            = 50
	// Metadata calls go to a random broker, so a new topic is only trusted
	// once this many lookups in a row have seen it.
	requiredSightings = 5
)

// TopicManager makes sure the report topic exists before reports are
// produced to it.
type TopicManager struct {
	requestor    kmsg.Requestor
	admClient    clients.KadmClient
	cfg          *config.ReportConfig
	pollInterval time.Duration
}

func NewTopicManager(requestor kmsg.Requestor, admClient clients.KadmClient, cfg *config.ReportConfig) *TopicManager {
	return &TopicManager{
		requestor:    requestor,
		admClient:    admClient,
		cfg:          cfg,
		pollInterval: defaultPollInterval,
	}
}

// EnsureTopic creates the report topic unless it already exists.
func (tm *TopicManager) EnsureTopic(ctx context.Context) error {
	exists, err := tm.topicExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		log.Debug().Str("topic", tm.cfg.GetTopic()).Msg("Report topic exists")
		return nil
	}

	brokerIDs, err := tm.getAllBrokers(ctx)
	if err != nil {
		return err
	}
	if rf := int(tm.cfg.GetReplicationFactor()); brokerIDs.Len() < rf {
		return fmt.Errorf("replication factor %d needs more brokers than the %d available", rf, brokerIDs.Len())
	}

	if err := tm.createTopic(ctx); err != nil {
		return err
	}
	return tm.waitUntilTopicExists(ctx)
}

func (tm *TopicManager) topicExists(ctx context.Context) (bool, error) {
	topic := tm.cfg.GetTopic()
	topicDetails, err := tm.admClient.ListTopics(ctx, topic)
	if err != nil {
		return false, fmt.Errorf("list topics: %w", err)
	}

	if td, exists := topicDetails[topic]; exists {
		if td.Err == nil {
			return true, nil
		}
		if errors.Is(td.Err, kerr.UnknownTopicOrPartition) {
			return false, nil
		}
		return false, td.Err
	}
	return false, nil
}

func (tm *TopicManager) getAllBrokers(ctx context.Context) (*utils.Set[int32], error) {
	brokerIDs := utils.NewSet[int32]()
	brokerDetails, err := tm.admClient.ListBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	for _, bd := range brokerDetails {
		brokerIDs.Add(bd.NodeID)
	}
	return brokerIDs, nil
}

func (tm *TopicManager) createTopic(ctx context.Context) error {
	log.Info().Str("topic", tm.cfg.GetTopic()).Msg("Creating report topic")

	createTopicsRequest := kmsg.NewCreateTopicsRequest()
	topic := kmsg.NewCreateTopicsRequestTopic()
	topic.Topic = tm.cfg.GetTopic()
	topic.NumPartitions = tm.cfg.GetPartitions()
	topic.ReplicationFactor = tm.cfg.GetReplicationFactor()
	topic.Configs = tm.generateTopicConfigs()
	createTopicsRequest.Topics = append(createTopicsRequest.Topics, topic)

	resp, err := createTopicsRequest.RequestWith(ctx, tm.requestor)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic.Topic, err)
	}
	if len(resp.Topics) != 1 {
		return fmt.Errorf("unexpected number of topics in response: %d", len(resp.Topics))
	}
	if err := kerr.ErrorForCode(resp.Topics[0].ErrorCode); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic.Topic, err)
	}
	return nil
}

func (tm *TopicManager) generateTopicConfigs() []kmsg.CreateTopicsRequestTopicConfig {
	topicConfigs := []kmsg.CreateTopicsRequestTopicConfig{}
	configs := map[string]string{
		"cleanup.policy": "delete",
		"retention.ms":   strconv.FormatInt(tm.cfg.GetRetentionMs(), 10),
	}
	for k, v := range configs {
		topicConfig := kmsg.NewCreateTopicsRequestTopicConfig()
		topicConfig.Name = k
		topicConfig.Value = &v
		topicConfigs = append(topicConfigs, topicConfig)
	}
	return topicConfigs
}

func (tm *TopicManager) waitUntilTopicExists(ctx context.Context) error {
	topic := tm.cfg.GetTopic()
	sightings := 0
	for range maxPolls {
		if err := ctx.Err(); err != nil {
			return err
		}
		topics, err := tm.admClient.ListTopics(ctx, topic)
		if err == nil {
			if td, exists := topics[topic]; exists && td.Err == nil {
				sightings++
				if sightings == requiredSightings {
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tm.pollInterval):
		}
	}
	return fmt.Errorf("topic %s not visible after %d lookups", topic, maxPolls)
}
