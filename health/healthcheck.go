package health

import (
	"net/http"

	fthealth "github.com/Financial-Times/go-fthealth/v1_1"
	"github.com/Financial-Times/service-status-go/gtg"
)

const HealthPath = "/__health"

type entityLinker interface {
	ConnectivityCheck() error
}

type kafkaConsumer interface {
	ConnectivityCheck() error
}

type kafkaProducer interface {
	ConnectivityCheck() error
}

// HealthCheck reports on the mapper's collaborators: the Wikidata API, the
// whitelist config and, when queue mode is on, the Kafka connections.
// Consumer and producer are nil when the app runs without the queue.
type HealthCheck struct {
	appSystemCode  string
	appName        string
	appDescription string
	whitelistError error
	linker         entityLinker
	consumer       kafkaConsumer
	producer       kafkaProducer
}

func NewHealthCheck(appSystemCode string, appName string, appDescription string, whitelistErr error, linker entityLinker, c kafkaConsumer, p kafkaProducer) *HealthCheck {
	return &HealthCheck{
		appSystemCode:  appSystemCode,
		appName:        appName,
		appDescription: appDescription,
		whitelistError: whitelistErr,
		linker:         linker,
		consumer:       c,
		producer:       p,
	}
}

func (h *HealthCheck) Health() func(w http.ResponseWriter, r *http.Request) {
	hc := fthealth.HealthCheck{
		SystemCode:  h.appSystemCode,
		Name:        h.appName,
		Description: h.appDescription,
		Checks:      h.Checks(),
	}
	return fthealth.Handler(hc)
}

func (h *HealthCheck) Checks() []fthealth.Check {
	checks := []fthealth.Check{}
	if h.whitelistError != nil {
		checks = append(checks, h.whitelistCheck())
	}
	checks = append(checks, h.wikidataCheck())
	if h.consumer != nil {
		checks = append(checks, h.readQueueCheck())
	}
	if h.producer != nil {
		checks = append(checks, h.writeQueueCheck())
	}
	return checks
}

func (h *HealthCheck) whitelistCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "source-app-whitelist",
		Name:             "Source App Whitelist Filter",
		Severity:         2,
		BusinessImpact:   "No named entities will be linked. Annotated documents will lack Wikidata information.",
		TechnicalSummary: "The whitelist configuration for this mapper is invalid",
		PanicGuide:       "https://github.com/JinnyViboonlarp/app-nel",
		Checker: func() (string, error) {
			return "Whitelist regex is invalid", h.whitelistError
		},
	}
}

func (h *HealthCheck) wikidataCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "wikidata-api-reachable",
		Name:             "Wikidata API Reachable",
		Severity:         1,
		BusinessImpact:   "Named entities cannot be linked to Wikidata. Annotation requests will fail.",
		TechnicalSummary: "The Wikidata search API is not reachable/healthy",
		PanicGuide:       "https://github.com/JinnyViboonlarp/app-nel",
		Checker:          h.checkWikidataConnectivity,
	}
}

func (h *HealthCheck) readQueueCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "read-message-queue-reachable",
		Name:             "Read Message Queue Reachable",
		Severity:         2,
		BusinessImpact:   "Published documents can't be read from the queue. Queued annotation is delayed.",
		TechnicalSummary: "Read message queue is not reachable/healthy",
		PanicGuide:       "https://github.com/JinnyViboonlarp/app-nel",
		Checker:          h.checkKafkaConsumerConnectivity,
	}
}

func (h *HealthCheck) writeQueueCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "write-message-queue-reachable",
		Name:             "Write Message Queue Reachable",
		Severity:         2,
		BusinessImpact:   "Annotated documents can't be written to the queue. Queued annotation is delayed.",
		TechnicalSummary: "Write message queue is not reachable/healthy",
		PanicGuide:       "https://github.com/JinnyViboonlarp/app-nel",
		Checker:          h.checkKafkaProducerConnectivity,
	}
}

func (h *HealthCheck) GTG() gtg.Status {
	checkers := []gtg.StatusChecker{
		func() gtg.Status { return gtgCheck(h.checkWikidataConnectivity) },
	}
	if h.consumer != nil {
		checkers = append(checkers, func() gtg.Status { return gtgCheck(h.checkKafkaConsumerConnectivity) })
	}
	if h.producer != nil {
		checkers = append(checkers, func() gtg.Status { return gtgCheck(h.checkKafkaProducerConnectivity) })
	}

	return gtg.FailFastParallelCheck(checkers)()
}

func gtgCheck(handler func() (string, error)) gtg.Status {
	if _, err := handler(); err != nil {
		return gtg.Status{GoodToGo: false, Message: err.Error()}
	}
	return gtg.Status{GoodToGo: true}
}

func (h *HealthCheck) checkWikidataConnectivity() (string, error) {
	if err := h.linker.ConnectivityCheck(); err != nil {
		return "Error connecting with the Wikidata API", err
	}
	return "Successfully connected to the Wikidata API", nil
}

func (h *HealthCheck) checkKafkaConsumerConnectivity() (string, error) {
	if err := h.consumer.ConnectivityCheck(); err != nil {
		return "Error connecting with Kafka", err
	}
	return "Successfully connected to Kafka", nil
}

func (h *HealthCheck) checkKafkaProducerConnectivity() (string, error) {
	if err := h.producer.ConnectivityCheck(); err != nil {
		return "Error connecting with Kafka", err
	}
	return "Successfully connected to Kafka", nil
}
