package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"sync"
	"syscall"
	"time"

	fthealth "github.com/Financial-Times/go-fthealth/v1_1"
	ftlogger "github.com/Financial-Times/go-logger"
	logger "github.com/Financial-Times/go-logger/v2"
	ftkafka "github.com/Financial-Times/kafka-client-go/kafka"
	status "github.com/Financial-Times/service-status-go/httphandlers"
	"github.com/jawher/mow.cli"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/JinnyViboonlarp/app-nel/health"
	appkafka "github.com/JinnyViboonlarp/app-nel/kafka"
	"github.com/JinnyViboonlarp/app-nel/mmif"
	"github.com/JinnyViboonlarp/app-nel/service"
	"github.com/JinnyViboonlarp/app-nel/wikidata"
)

const (
	appName        = "NEL with Wikidata"
	appDescription = "Link all named entities in an MMIF file with their Wikidata information"
	appSystemCode  = "app-nel"
)

func main() {
	_ = godotenv.Load()

	app := cli.App("app-nel", appDescription)
	app.Spec = "[OPTIONS] [INFILE OUTFILE]"

	port := app.String(cli.StringOpt{
		Name:   "port",
		Value:  "8080",
		Desc:   "Port to listen on",
		EnvVar: "APP_PORT",
	})
	logLevel := app.String(cli.StringOpt{
		Name:   "logLevel",
		Value:  "info",
		Desc:   "Logging level (debug, info, warn, error)",
		EnvVar: "LOG_LEVEL",
	})

	// Wikidata client config
	wikidataAPIURL := app.String(cli.StringOpt{
		Name:   "wikidataAPIURL",
		Value:  wikidata.DefaultAPIURL,
		Desc:   "Wikidata action API endpoint used for entity search",
		EnvVar: "WIKIDATA_API_URL",
	})
	wikidataLanguage := app.String(cli.StringOpt{
		Name:   "wikidataLanguage",
		Value:  wikidata.DefaultLanguage,
		Desc:   "Language for entity labels and descriptions",
		EnvVar: "WIKIDATA_LANGUAGE",
	})
	wikidataSearchLimit := app.Int(cli.IntOpt{
		Name:   "wikidataSearchLimit",
		Value:  wikidata.DefaultSearchLimit,
		Desc:   "How many candidates to request per entity search",
		EnvVar: "WIKIDATA_SEARCH_LIMIT",
	})

	// view filter
	appWhitelistRegex := app.String(cli.StringOpt{
		Name:   "appWhitelistRegex",
		Desc:   "The regex used to select which apps' named-entity views are linked.",
		EnvVar: "APP_WHITELIST_REGEX",
		Value:  `spacy_nlp`,
	})

	// Kafka config, only used when --queue is set
	queueEnabled := app.Bool(cli.BoolOpt{
		Name:   "queue",
		Value:  false,
		Desc:   "Also consume MMIF publish events from Kafka",
		EnvVar: "QUEUE_ENABLED",
	})
	originWhitelistRegex := app.String(cli.StringOpt{
		Name:   "originWhitelistRegex",
		Desc:   "The regex to use to filter queue messages based on Origin-System-Id.",
		EnvVar: "ORIGIN_WHITELIST_REGEX",
		Value:  `https?://apps\.clams\.ai/.*`,
	})
	zookeeperAddress := app.String(cli.StringOpt{
		Name:   "zookeeperAddress",
		Value:  "localhost:2181",
		Desc:   "Addresses used by the queue consumer to connect to the queue",
		EnvVar: "ZOOKEEPER_ADDRESS",
	})
	consumerGroup := app.String(cli.StringOpt{
		Name:   "consumerGroup",
		Value:  "app-nel",
		Desc:   "Group used to read the messages from the queue",
		EnvVar: "CONSUMER_GROUP",
	})
	consumerTopic := app.String(cli.StringOpt{
		Name:   "consumerTopic",
		Value:  "MmifPublicationEvents",
		Desc:   "The topic to read the documents from",
		EnvVar: "CONSUMER_TOPIC",
	})
	brokerAddress := app.String(cli.StringOpt{
		Name:   "brokerAddress",
		Value:  "localhost:9092",
		Desc:   "Address used by the producer to connect to the queue",
		EnvVar: "BROKER_ADDRESS",
	})
	producerTopic := app.String(cli.StringOpt{
		Name:   "producerTopic",
		Value:  "MmifNelAnnotations",
		Desc:   "The topic to write the annotated documents to",
		EnvVar: "PRODUCER_TOPIC",
	})

	// one-shot mode
	infile := app.String(cli.StringArg{
		Name: "INFILE",
		Desc: "Input MMIF file; annotates it and exits instead of serving",
	})
	outfile := app.String(cli.StringArg{
		Name: "OUTFILE",
		Desc: "Where to write the annotated MMIF file",
	})

	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetLevel(log.InfoLevel)
	log.Info("[Startup] app-nel is starting ")

	app.Action = func() {
		ftlogger.InitLogger(appSystemCode, *logLevel)
		log.Infof("System code: %s, App Name: %s, Port: %s", appSystemCode, appName, *port)

		whitelist, regexErr := regexp.Compile(*appWhitelistRegex)
		if regexErr != nil {
			log.Error("Please specify a valid app whitelist ", regexErr)
		}

		wikidataClient := wikidata.NewClient(*wikidataAPIURL, *wikidataLanguage, *wikidataSearchLimit)
		mapper := service.NewEntityLinkingService(whitelist, wikidataClient)

		if *infile != "" {
			if err := annotateFile(mapper, *infile, *outfile); err != nil {
				log.WithError(err).Fatal("One-shot annotation failed")
			}
			return
		}

		upplog := logger.NewUPPLogger(appSystemCode, *logLevel)
		handler := service.NewHandler(mapper, upplog)

		var consumer *appkafka.ProxyConsumer
		var producer *appkafka.ProxyProducer
		var healthService *health.HealthCheck

		if *queueEnabled {
			originWhitelist, originErr := regexp.Compile(*originWhitelistRegex)
			if originErr != nil {
				log.Error("Please specify a valid origin whitelist ", originErr)
			}

			producer = appkafka.NewProxyProducer(*brokerAddress, *producerTopic, nil, time.Minute)
			go producer.Connect()

			consumer = appkafka.NewProxyConsumer(*zookeeperAddress, *consumerGroup, []string{*consumerTopic}, ftkafka.DefaultConsumerConfig(), time.Minute)
			queueMapper := service.NewQueueMapper(originWhitelist, mapper, producer)
			go consumer.StartListening(queueMapper.HandleMessage)
			defer consumer.Shutdown()

			healthService = health.NewHealthCheck(appSystemCode, appName, appDescription, regexErr, wikidataClient, consumer, producer)
		} else {
			healthService = health.NewHealthCheck(appSystemCode, appName, appDescription, regexErr, wikidataClient, nil, nil)
		}

		serveEndpoints(*port, handler, healthService)
	}
	if err := app.Run(os.Args); err != nil {
		log.Errorf("App could not start, error=[%s]\n", err)
	}
}

// annotateFile bypasses the server: it annotates a single MMIF file and
// prints a summary of the resulting views.
func annotateFile(mapper *service.EntityLinkingService, infile string, outfile string) error {
	metadata, err := json.MarshalIndent(service.NewAppMetadata(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(metadata))

	data, err := ioutil.ReadFile(infile)
	if err != nil {
		return err
	}

	m, err := mmif.Parse(data)
	if err != nil {
		return err
	}

	if err := mapper.Annotate(context.Background(), m); err != nil {
		return err
	}

	out, err := m.Marshal(true)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(outfile, out, 0644); err != nil {
		return err
	}

	for _, view := range m.Views {
		fmt.Printf("<View id=%s annotations=%d app=%s>\n", view.ID, len(view.Annotations), view.Metadata.App)
	}
	return nil
}

func serveEndpoints(port string, handler http.Handler, healthService *health.HealthCheck) {
	serveMux := http.NewServeMux()

	hc := fthealth.HealthCheck{SystemCode: appSystemCode, Name: appName, Description: appDescription, Checks: healthService.Checks()}
	serveMux.HandleFunc(health.HealthPath, fthealth.Handler(hc))
	serveMux.HandleFunc(status.GTGPath, status.NewGoodToGoHandler(healthService.GTG))
	serveMux.HandleFunc(status.BuildInfoPath, status.BuildInfoHandler)
	serveMux.Handle("/", handler)

	server := &http.Server{Addr: ":" + port, Handler: serveMux}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Infof("HTTP server closing with message: %v", err)
		}
		wg.Done()
	}()

	waitForSignal()
	log.Infof("[Shutdown] app-nel is shutting down")

	if err := server.Close(); err != nil {
		log.Errorf("Unable to stop http server: %v", err)
	}

	wg.Wait()
}

func waitForSignal() {
	ch := make(chan os.Signal)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
}
