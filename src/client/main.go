package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/spf13/viper"

	client "retail-sales-analysis/src/client/lib"
	"retail-sales-analysis/src/common/logger"
	"retail-sales-analysis/src/common/middleware"
	"retail-sales-analysis/src/common/storage"
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

// PrintConfig logs the current client configuration details.
func PrintConfig(v *viper.Viper, logger *logging.Logger) {
	logger.Infof("Client startup with: bucket: %s | ingest queue: %s",
		v.GetString("pipeline.bucket"), v.GetString("pipeline.inboxQueue"),
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

	if len(os.Args) != 2 {
		logger.Error("Please enter the correct argument: <local_filepath>")
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}
	localPath := os.Args[1]

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

	inboxName := config.GetString("pipeline.inboxQueue")
	inboxExists := middleware.QueueExists(rabbitConn, inboxName)
	channel, err := rabbitConn.CreateNewChannel()
	if err != nil {
		logger.Errorf("Failed opening channel: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}
	inbox := middleware.NewMessageMiddlewareQueue(inboxName, channel)
	if !inboxExists {
		if err := inbox.Declare(); err != nil {
			logger.Errorf("Failed creating queue %s: %s", inboxName, err)
			os.Exit(STARTUP_ERROR_EXIT_CODE)
		}
	}
	logger.Infof("%s queue has been set up", inboxName)

	clientConf := client.ClientConfig{
		BucketName: config.GetString("pipeline.bucket"),
	}

	err = client.NewClient(clientConf, store, inbox).Run(localPath)
	if err != nil {
		logger.Errorf("Failed uploading sales file: %s", err)
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}

	os.Exit(SUCCESS_EXIT_CODE)
}
