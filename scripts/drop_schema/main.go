// Drops the chat tables. Development helper only.
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

	session, err := db.NewSession(strings.Split(hostsStr, ","), "chat")
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	for _, table := range []string{"dm_messages", "user_conversations", "users", "users_by_email"} {
		log.Printf("Dropping table %s...", table)
		if err := session.Query("DROP TABLE IF EXISTS " + table).Exec(); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
	}
	log.Println("Tables dropped successfully.")
}
