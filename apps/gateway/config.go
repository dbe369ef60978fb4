package main

type Config struct {
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	ScyllaHosts    string `env:"SCYLLA_HOSTS,default=localhost:9042"`
	ScyllaKeyspace string `env:"SCYLLA_KEYSPACE,default=chat"`
	RedisAddr      string `env:"REDIS_ADDR"`
	KafkaBrokers   string `env:"KAFKA_BROKERS"`
	JWTSecret      string `env:"JWT_SECRET,required=true"`
	SendBuffer     int    `env:"SEND_BUFFER_SIZE,default=256"`
	SnowflakeNode  int64  `env:"SNOWFLAKE_NODE,default=1"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}
