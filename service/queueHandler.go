package service

import (
	"context"
	"regexp"
	"time"

	log "github.com/Financial-Times/go-logger"
	"github.com/Financial-Times/kafka-client-go/kafka"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/JinnyViboonlarp/app-nel/mmif"
)

const messageTimestampDateFormat = "2006-01-02T15:04:05.000Z"

const mapperEvent = "Map"
const contentTypeMmif = "mmif"

// QueueMapper consumes MMIF publish events, runs entity linking on them and
// produces the annotated documents.
type QueueMapper struct {
	originWhitelist *regexp.Regexp
	service         *EntityLinkingService
	messageProducer kafka.Producer
}

func NewQueueMapper(originWhitelist *regexp.Regexp, service *EntityLinkingService, messageProducer kafka.Producer) *QueueMapper {
	return &QueueMapper{originWhitelist: originWhitelist, service: service, messageProducer: messageProducer}
}

func (q *QueueMapper) HandleMessage(msg kafka.FTMessage) error {
	tid, found := msg.Headers["X-Request-Id"]
	if !found {
		tid = "unknown"
	}

	requestLog := log.WithTransactionID(tid)
	if q.originWhitelist == nil {
		requestLog.Error("Skipping this message because the origin whitelist is invalid.")
		return nil
	}

	origin := msg.Headers["Origin-System-Id"]
	if !q.originWhitelist.MatchString(origin) {
		requestLog.Infof("Skipping document published with Origin-System-Id \"%v\". It does not match the configured whitelist.", origin)
		return nil
	}

	if !gjson.Get(msg.Body, "metadata.mmif").Exists() {
		log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
			WithValidFlag(false).
			Error("Message body is not an MMIF document")
		return nil
	}

	m, err := mmif.Parse([]byte(msg.Body))
	if err != nil {
		log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
			WithValidFlag(false).
			WithError(err).
			Error("Cannot parse message body")
		return err
	}

	requestLog.Info("Linking named entities for published document")

	if err := q.service.Annotate(context.Background(), m); err != nil {
		log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
			WithValidFlag(true).
			WithError(err).
			Error("Error linking named entities")
		return err
	}

	annotated, err := m.Marshal(false)
	if err != nil {
		log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
			WithValidFlag(true).
			WithError(err).
			Error("Error marshalling the annotated document")
		return err
	}

	message := kafka.FTMessage{Headers: buildAnnotatedDocumentHeaders(msg.Headers), Body: string(annotated)}
	if err := q.messageProducer.SendMessage(message); err != nil {
		log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
			WithValidFlag(true).
			WithError(err).
			Error("Error sending annotated document to queue")
		return err
	}

	log.WithMonitoringEvent(mapperEvent, tid, contentTypeMmif).
		WithValidFlag(true).
		Info("Sent annotated document to queue")
	return nil
}

func buildAnnotatedDocumentHeaders(publishEventHeaders map[string]string) map[string]string {
	return map[string]string{
		"Message-Id":        uuid.New().String(),
		"Message-Type":      "nel-annotations",
		"Content-Type":      publishEventHeaders["Content-Type"],
		"X-Request-Id":      publishEventHeaders["X-Request-Id"],
		"Origin-System-Id":  publishEventHeaders["Origin-System-Id"],
		"Message-Timestamp": time.Now().Format(messageTimestampDateFormat),
	}
}
