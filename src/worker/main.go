package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/viper"

	"retail-sales-analysis/src/common/logger"
	"retail-sales-analysis/src/common/middleware"
	"retail-sales-analysis/src/common/storage"
	worker "retail-sales-analysis/src/worker/lib"
)

const (
	SUCCESS_EXIT_CODE                 = 0
	STARTUP_ERROR_EXIT_CODE           = 1
	ERROR_DURING_PROCESSING_EXIT_CODE = 2
)

// InitConfig initializes the application configuration using Viper.
// It reads from config.yaml and environment variables.
// Returns the configured Viper instance or an error.
func InitConfig() (*viper.Viper, error) {

	v := viper.New()

	v.AutomaticEnv()
	// Use a replacer to replace env variables underscores with points. This let us
	// use nested configurations in the config file and at the same time define
	// env variables for the nested configurations
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read configuration from config file. If config file
	// does not exists then ReadInConfig will fail but configuration
	// can be loaded from the environment variables so we shouldn't
	// return an error in that case
	v.SetConfigFile("./config.yaml")
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Configuration could not be read from config file. Using env variables instead")
	}

	return v, nil
}

// PrintConfig logs the current worker configuration details.
func PrintConfig(v *viper.Viper, logger *logging.Logger) {
	logger.Infof("Worker startup with: bucket: %s | ingest queue: %s | completion queue: %s",
		v.GetString("pipeline.bucket"),
		v.GetString("pipeline.inboxQueue"),
		v.GetString("pipeline.outboxQueue"),
	)

	logger.Infof("Config for polling: maxMessages: %d | pollSeconds: %d | runOnce: %t",
		v.GetInt("worker.maxMessages"),
		v.GetInt("worker.pollSeconds"),
		v.GetBool("worker.runOnce"),
	)

	logger.Infof("Detected object store configuration: endpoint: %s | useSSL: %t",
		v.GetString("storage.endpoint"),
		v.GetBool("storage.useSSL"),
	)

	logger.Infof("Detected RabbitMQ configuration: host: %s | port: %d | username: %s",
		v.GetString("rabbitmq.host"),
		v.GetInt("rabbitmq.port"),
		v.GetString("rabbitmq.user"),
	)
}

// ensureQueue opens a queue handler and creates the queue if absent.
func ensureQueue(rabbitConn *middleware.RabbitConnection, queueName string, logger *logging.Logger) (*middleware.MessageMiddlewareQueue, error) {
	exists := middleware.QueueExists(rabbitConn, queueName)

	channel, err := rabbitConn.CreateNewChannel()
	if err != nil {
		return nil, fmt.Errorf("failed opening channel for %s: %w", queueName, err)
	}

	queue := middleware.NewMessageMiddlewareQueue(queueName, channel)
	if !exists {
		if err := queue.Declare(); err != nil {
			return nil, fmt.Errorf("failed creating queue %s: %w", queueName, err)
		}
	}

	logger.Infof("%s queue has been set up", queueName)
	return queue, nil
}

func main() {
	config, err := InitConfig()
	if err != nil {
		fmt.Printf("Error initializing configuration: %v\n", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	err = logger.InitGlobalLogger(config.GetString("log.level"))
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	logger := logger.GetLoggerWithPrefix("[MAIN]")

	PrintConfig(config, logger)

	storageConf := storage.NewStorageConfig(
		config.GetString("storage.endpoint"),
		config.GetString("storage.accessKey"),
		config.GetString("storage.secretKey"),
		config.GetBool("storage.useSSL"),
	)
	store, err := storage.NewMinioStore(&storageConf)
	if err != nil {
		logger.Errorf("Failed connecting to object store: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	rabbitConf := middleware.NewRabbitConfig(
		config.GetString("rabbitmq.user"),
		config.GetString("rabbitmq.pass"),
		config.GetString("rabbitmq.host"),
		config.GetInt("rabbitmq.port"),
	)
	rabbitConn, err := middleware.NewRabbitConnection(&rabbitConf)
	if err != nil {
		logger.Errorf("Failed connecting to RabbitMQ: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}
	defer rabbitConn.Close()

	inbox, err := ensureQueue(rabbitConn, config.GetString("pipeline.inboxQueue"), logger)
	if err != nil {
		logger.Errorf("Failed setting up ingest queue: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	outbox, err := ensureQueue(rabbitConn, config.GetString("pipeline.outboxQueue"), logger)
	if err != nil {
		logger.Errorf("Failed setting up completion queue: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	workerConf := worker.IngestWorkerConfig{
		BucketName:   config.GetString("pipeline.bucket"),
		MaxMessages:  config.GetInt("worker.maxMessages"),
		PollInterval: time.Duration(config.GetInt("worker.pollSeconds")) * time.Second,
		RunOnce:      config.GetBool("worker.runOnce"),
	}

	err = worker.NewIngestWorker(workerConf, store, inbox, outbox).Run()
	if err != nil {
		logger.Errorf("Worker failed: %s", err)
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}

	os.Exit(SUCCESS_EXIT_CODE)
}
