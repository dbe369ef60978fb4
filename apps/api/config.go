package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=8081"`
	ScyllaHosts    string        `env:"SCYLLA_HOSTS,default=localhost:9042"`
	ScyllaKeyspace string        `env:"SCYLLA_KEYSPACE,default=chat"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	JWTSecret      string        `env:"JWT_SECRET,required=true"`
	TokenTTL       time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	SnowflakeNode  int64         `env:"SNOWFLAKE_NODE,default=2"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
}
