package main

type Config struct {
	KafkaBrokers string `env:"KAFKA_BROKERS,default=localhost:19092"`
	GroupID      string `env:"KAFKA_GROUP_ID,default=notification-service-group"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
}
