//go:build integration

package main_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saigon-transit/service-route/internal/application"
	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/events"
	"github.com/saigon-transit/service-route/internal/gateway/nominatim"
	"github.com/saigon-transit/service-route/internal/gateway/osrm"
	"github.com/saigon-transit/service-route/internal/kafka"
	"github.com/saigon-transit/service-route/internal/repository"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	KafkaBrokers []string
	Cleanup      func()
}

// flowStack holds a wired-up flow service with fake upstream providers.
type flowStack struct {
	Flows           *application.FlowService
	GeocoderServer  *httptest.Server
	RouterServer    *httptest.Server
	CleanupProducer func()
}

// setupKafka starts a Kafka testcontainer and pre-creates the event topic.
func setupKafka(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicRouteBotEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}

	return &testInfra{
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupFlowStack wires the full flow service against fake geocoding and
// routing upstreams and a real Kafka producer.
func setupFlowStack(t *testing.T, brokers []string, geocoderBody, routerBody string) *flowStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	geocoderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geocoderBody))
	}))
	routerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(routerBody))
	}))

	geocoder := nominatim.NewClient(config.GeocoderConfig{
		URL:            geocoderServer.URL,
		Viewbox:        "106.3567007,10.1399458,107.0276712,11.1603083",
		CountryCodes:   "vn",
		Limit:          3,
		AcceptLanguage: "vi",
		UserAgent:      "route-bot-integration/1.0",
		Timeout:        5 * time.Second,
	}, logger)

	router := osrm.NewClient(config.RouterConfig{
		URL:       routerServer.URL,
		UserAgent: "route-bot-integration/1.0",
		Timeout:   5 * time.Second,
	}, logger)

	links := osrm.NewLinkBuilder(config.MapLinkConfig{
		BaseURL: "https://www.openstreetmap.org/directions",
		Engine:  "fossgis_osrm_car",
	})

	producer := kafka.NewProducer(brokers, logger)
	flows := application.NewFlowService(
		repository.NewInMemorySessionRepository(),
		geocoder, router, links, producer, logger,
	)

	return &flowStack{
		Flows:          flows,
		GeocoderServer: geocoderServer,
		RouterServer:   routerServer,
		CleanupProducer: func() {
			_ = producer.Close()
			geocoderServer.Close()
			routerServer.Close()
		},
	}
}

// errFoundEvent stops the consumer loop once the wanted event arrives.
var errFoundEvent = errors.New("found expected event")

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger, _ := zap.NewDevelopment()
	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	consumer := kafka.NewConsumer(brokers, groupID, topic, logger)
	defer func() { _ = consumer.Close() }()

	var found kafka.CloudEvent
	err := consumer.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			return nil
		}
		if ce.Type == expectedType {
			found = ce
			return errFoundEvent
		}
		return nil
	})
	if !errors.Is(err, errFoundEvent) {
		t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
	}
	return found
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
