package kafka

import (
	"errors"
	"time"

	ftkafka "github.com/Financial-Times/kafka-client-go/kafka"
	log "github.com/sirupsen/logrus"
	"github.com/wvanbergen/kafka/consumergroup"
)

const errConsumerNotConnected = "consumer is not connected to Kafka"

// ProxyConsumer defers the Kafka connection so the app can come up and serve
// its health endpoints while the queue is still unreachable.
type ProxyConsumer struct {
	zookeeperConnectionString string
	consumerGroup             string
	topics                    []string
	config                    *consumergroup.Config
	retryInterval             time.Duration
	consumer                  ftkafka.Consumer
}

func NewProxyConsumer(zookeeperConnectionString string, consumerGroup string, topics []string, config *consumergroup.Config, retryInterval time.Duration) *ProxyConsumer {
	if retryInterval <= 0 {
		retryInterval = time.Minute
	}
	return &ProxyConsumer{
		zookeeperConnectionString: zookeeperConnectionString,
		consumerGroup:             consumerGroup,
		topics:                    topics,
		config:                    config,
		retryInterval:             retryInterval,
	}
}

func (c *ProxyConsumer) connect() {
	connectorLog := log.WithField("zookeeper", c.zookeeperConnectionString).
		WithField("topics", c.topics).
		WithField("consumerGroup", c.consumerGroup)
	for {
		consumer, err := ftkafka.NewConsumer(c.zookeeperConnectionString, c.consumerGroup, c.topics, c.config)
		if err == nil {
			connectorLog.Info("connected to Kafka consumer")
			c.consumer = consumer
			return
		}

		connectorLog.WithError(err).Warn(errConsumerNotConnected)
		time.Sleep(c.retryInterval)
	}
}

// StartListening blocks until a connection is established, then forwards
// messages to the handler.
func (c *ProxyConsumer) StartListening(messageHandler func(message ftkafka.FTMessage) error) {
	if c.consumer == nil {
		c.connect()
	}

	c.consumer.StartListening(messageHandler)
}

func (c *ProxyConsumer) Shutdown() {
	if c.consumer != nil {
		c.consumer.Shutdown()
	}
}

func (c *ProxyConsumer) ConnectivityCheck() error {
	if c.consumer == nil {
		return errors.New(errConsumerNotConnected)
	}

	// the consumer's own healthcheck is unreliable, so try to establish a
	// fresh, independent connection instead
	healthcheckConsumer, err := ftkafka.NewConsumer(c.zookeeperConnectionString, c.consumerGroup+"-healthcheck", c.topics, c.config)
	if err != nil {
		return err
	}
	defer healthcheckConsumer.Shutdown()

	return nil
}
