package kafka

import (
	"errors"
	"time"

	ftkafka "github.com/Financial-Times/kafka-client-go/kafka"
	"github.com/Shopify/sarama"
	log "github.com/sirupsen/logrus"
)

const errProducerNotConnected = "producer is not connected to Kafka"

// ProxyProducer mirrors ProxyConsumer for the write side: messages are
// rejected rather than buffered while the connection is down.
type ProxyProducer struct {
	brokers       string
	topic         string
	config        *sarama.Config
	retryInterval time.Duration
	producer      ftkafka.Producer
}

func NewProxyProducer(brokers string, topic string, config *sarama.Config, retryInterval time.Duration) *ProxyProducer {
	if retryInterval <= 0 {
		retryInterval = time.Minute
	}
	return &ProxyProducer{
		brokers:       brokers,
		topic:         topic,
		config:        config,
		retryInterval: retryInterval,
	}
}

// Connect blocks until a producer connection is established.
func (p *ProxyProducer) Connect() {
	connectorLog := log.WithField("brokers", p.brokers).WithField("topic", p.topic)
	for {
		producer, err := ftkafka.NewProducer(p.brokers, p.topic, p.config)
		if err == nil {
			connectorLog.Info("connected to Kafka producer")
			p.producer = producer
			return
		}

		connectorLog.WithError(err).Warn(errProducerNotConnected)
		time.Sleep(p.retryInterval)
	}
}

func (p *ProxyProducer) SendMessage(message ftkafka.FTMessage) error {
	if p.producer == nil {
		return errors.New(errProducerNotConnected)
	}

	return p.producer.SendMessage(message)
}

func (p *ProxyProducer) ConnectivityCheck() error {
	if p.producer == nil {
		return errors.New(errProducerNotConnected)
	}

	return p.producer.ConnectivityCheck()
}
