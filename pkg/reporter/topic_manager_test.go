package reporter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/pliu/splayseq/pkg/clients"
	"github.com/pliu/splayseq/pkg/config"
)

// MockKadmClient is a mock implementation of the KadmClient interface
type MockKadmClient struct {
	clients.KadmClient
	ListTopicsFunc  func(context.Context, ...string) (kadm.TopicDetails, error)
	ListBrokersFunc func(context.Context) (kadm.BrokerDetails, error)
}

func (m *MockKadmClient) ListTopics(ctx context.Context, topics ...string) (kadm.TopicDetails, error) {
	if m.ListTopicsFunc != nil {
		return m.ListTopicsFunc(ctx, topics...)
	}
	return nil, nil
}

func (m *MockKadmClient) ListBrokers(ctx context.Context) (kadm.BrokerDetails, error) {
	if m.ListBrokersFunc != nil {
		return m.ListBrokersFunc(ctx)
	}
	return nil, nil
}

func (m *MockKadmClient) Close() {}

// MockRequestor answers CreateTopics requests.
type MockRequestor struct {
	RequestFunc func(context.Context, kmsg.Request) (kmsg.Response, error)
	requests    []kmsg.Request
}

func (m *MockRequestor) Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error) {
	m.requests = append(m.requests, req)
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, req)
	}
	return nil, errors.New("unexpected request")
}

func createTopicsResponse(topic string, code int16) func(context.Context, kmsg.Request) (kmsg.Response, error) {
	return func(context.Context, kmsg.Request) (kmsg.Response, error) {
		resp := kmsg.NewPtrCreateTopicsResponse()
		rt := kmsg.NewCreateTopicsResponseTopic()
		rt.Topic = topic
		rt.ErrorCode = code
		resp.Topics = append(resp.Topics, rt)
		return resp, nil
	}
}

func brokers(ids ...int32) func(context.Context) (kadm.BrokerDetails, error) {
	return func(context.Context) (kadm.BrokerDetails, error) {
		details := kadm.BrokerDetails{}
		for _, id := range ids {
			details = append(details, kadm.BrokerDetail{NodeID: id})
		}
		return details, nil
	}
}

func testReportConfig() *config.ReportConfig {
	return &config.ReportConfig{
		Topic:             "reports",
		Partitions:        3,
		ReplicationFactor: 2,
		RetentionMs:       60000,
	}
}

func newTestTopicManager(req *MockRequestor, adm *MockKadmClient) *TopicManager {
	tm := NewTopicManager(req, adm, testReportConfig())
	tm.pollInterval = time.Millisecond
	return tm
}

func TestEnsureTopic_Exists(t *testing.T) {
	adm := &MockKadmClient{
		ListTopicsFunc: func(_ context.Context, topics ...string) (kadm.TopicDetails, error) {
			assert.Equal(t, []string{"reports"}, topics)
			return kadm.TopicDetails{"reports": {Topic: "reports"}}, nil
		},
	}
	req := &MockRequestor{}

	require.NoError(t, newTestTopicManager(req, adm).EnsureTopic(context.Background()))
	assert.Empty(t, req.requests)
}

func TestEnsureTopic_Creates(t *testing.T) {
	lookups := 0
	adm := &MockKadmClient{
		ListTopicsFunc: func(context.Context, ...string) (kadm.TopicDetails, error) {
			lookups++
			if lookups == 1 {
				return kadm.TopicDetails{"reports": {Topic: "reports", Err: kerr.UnknownTopicOrPartition}}, nil
			}
			return kadm.TopicDetails{"reports": {Topic: "reports"}}, nil
		},
		ListBrokersFunc: brokers(1, 2, 3),
	}
	req := &MockRequestor{RequestFunc: createTopicsResponse("reports", 0)}

	require.NoError(t, newTestTopicManager(req, adm).EnsureTopic(context.Background()))

	require.Len(t, req.requests, 1)
	create, ok := req.requests[0].(*kmsg.CreateTopicsRequest)
	require.True(t, ok)
	require.Len(t, create.Topics, 1)
	topic := create.Topics[0]
	assert.Equal(t, "reports", topic.Topic)
	assert.Equal(t, int32(3), topic.NumPartitions)
	assert.Equal(t, int16(2), topic.ReplicationFactor)
	configs := map[string]string{}
	for _, c := range topic.Configs {
		configs[c.Name] = *c.Value
	}
	assert.Equal(t, map[string]string{"cleanup.policy": "delete", "retention.ms": "60000"}, configs)
	assert.Equal(t, 1+requiredSightings, lookups)
}

func TestEnsureTopic_AlreadyExistsIsTolerated(t *testing.T) {
	lookups := 0
	adm := &MockKadmClient{
		ListTopicsFunc: func(context.Context, ...string) (kadm.TopicDetails, error) {
			lookups++
			if lookups == 1 {
				return kadm.TopicDetails{}, nil
			}
			return kadm.TopicDetails{"reports": {Topic: "reports"}}, nil
		},
		ListBrokersFunc: brokers(1, 2),
	}
	req := &MockRequestor{RequestFunc: createTopicsResponse("reports", kerr.TopicAlreadyExists.Code)}

	require.NoError(t, newTestTopicManager(req, adm).EnsureTopic(context.Background()))
}

func TestEnsureTopic_CreateErrors(t *testing.T) {
	missing := func(context.Context, ...string) (kadm.TopicDetails, error) {
		return kadm.TopicDetails{}, nil
	}

	t.Run("not enough brokers", func(t *testing.T) {
		adm := &MockKadmClient{ListTopicsFunc: missing, ListBrokersFunc: brokers(1)}
		req := &MockRequestor{}
		err := newTestTopicManager(req, adm).EnsureTopic(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "replication factor 2")
		assert.Empty(t, req.requests)
	})

	t.Run("request fails", func(t *testing.T) {
		adm := &MockKadmClient{ListTopicsFunc: missing, ListBrokersFunc: brokers(1, 2)}
		requestErr := errors.New("connection refused")
		req := &MockRequestor{RequestFunc: func(context.Context, kmsg.Request) (kmsg.Response, error) {
			return nil, requestErr
		}}
		require.ErrorIs(t, newTestTopicManager(req, adm).EnsureTopic(context.Background()), requestErr)
	})

	t.Run("broker rejects topic", func(t *testing.T) {
		adm := &MockKadmClient{ListTopicsFunc: missing, ListBrokersFunc: brokers(1, 2)}
		req := &MockRequestor{RequestFunc: createTopicsResponse("reports", kerr.InvalidReplicationFactor.Code)}
		require.ErrorIs(t, newTestTopicManager(req, adm).EnsureTopic(context.Background()), kerr.InvalidReplicationFactor)
	})

	t.Run("list topics fails", func(t *testing.T) {
		listErr := errors.New("metadata unavailable")
		adm := &MockKadmClient{ListTopicsFunc: func(context.Context, ...string) (kadm.TopicDetails, error) {
			return nil, listErr
		}}
		require.ErrorIs(t, newTestTopicManager(&MockRequestor{}, adm).EnsureTopic(context.Background()), listErr)
	})

	t.Run("topic error", func(t *testing.T) {
		adm := &MockKadmClient{ListTopicsFunc: func(context.Context, ...string) (kadm.TopicDetails, error) {
			return kadm.TopicDetails{"reports": {Topic: "reports", Err: kerr.TopicAuthorizationFailed}}, nil
		}}
		require.ErrorIs(t, newTestTopicManager(&MockRequestor{}, adm).EnsureTopic(context.Background()), kerr.TopicAuthorizationFailed)
	})
}

func TestWaitUntilTopicExists_GivesUp(t *testing.T) {
	adm := &MockKadmClient{
		ListTopicsFunc: func(context.Context, ...string) (kadm.TopicDetails, error) {
			return kadm.TopicDetails{}, nil
		},
	}
	tm := newTestTopicManager(&MockRequestor{}, adm)
	tm.pollInterval = time.Microsecond

	err := tm.waitUntilTopicExists(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not visible")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tm.waitUntilTopicExists(ctx), context.Canceled)
}
