// Creates the chat keyspace and tables. Run once before starting the
// services; the services themselves assume the schema exists.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/DairyFarmers/dfi-chat/pkg/db"
)

func main() {
	hostsStr := os.Getenv("SCYLLA_HOSTS")
	if hostsStr == "" {
		hostsStr = "localhost:9042"
	}
	hosts := strings.Split(hostsStr, ",")

	keyspace := os.Getenv("SCYLLA_KEYSPACE")
	if keyspace == "" {
		keyspace = "chat"
	}

	sysSession, err := db.NewSession(hosts, "system")
	if err != nil {
		log.Fatalf("Failed to connect to system keyspace: %v", err)
	}
	err = sysSession.Query(`CREATE KEYSPACE IF NOT EXISTS ` + keyspace +
		` WITH REPLICATION = { 'class' : 'SimpleStrategy', 'replication_factor' : 1 }`).Exec()
	sysSession.Close()
	if err != nil {
		log.Fatalf("Failed to create keyspace: %v", err)
	}

	session, err := db.NewSession(hosts, keyspace)
	if err != nil {
		log.Fatalf("Failed to connect to %s keyspace: %v", keyspace, err)
	}
	defer session.Close()

	if err := session.EnsureSchema(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Schema created successfully")
}
