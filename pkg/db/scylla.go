// Package db holds the ScyllaDB session shared by every dfi-chat service,
// plus the schema it expects.
package db

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

const (
	defaultTimeout = 5 * time.Second
	retryMin       = 100 * time.Millisecond
	retryMax       = 1 * time.Second
)

type Session struct {
	*gocql.Session
}

// NewSession connects to the cluster with the settings every dfi-chat
// service shares: quorum consistency and a bounded exponential retry.
func NewSession(hosts []string, keyspace string) (*Session, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("db: no hosts configured")
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = defaultTimeout
	cluster.ConnectTimeout = defaultTimeout
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        retryMin,
		Max:        retryMax,
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("db: connect %v: %w", hosts, err)
	}

	return &Session{Session: session}, nil
}
