// Smoke-checks a running api service: register two users, fetch history,
// active chats and a user search.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func register(apiAddr, name, email string) (tokenResponse, error) {
	reqBody, _ := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": "verify-pass",
	})
	resp, err := http.Post(apiAddr+"/register", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return tokenResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return tokenResponse{}, fmt.Errorf("register failed: %s", string(body))
	}

	var tr tokenResponse
	err = json.NewDecoder(resp.Body).Decode(&tr)
	return tr, err
}

func get(apiAddr, path, token string) (string, error) {
	req, _ := http.NewRequest(http.MethodGet, apiAddr+path, nil)
	req.Header.Add("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return string(body), nil
}

func main() {
	apiAddr := "http://localhost:8081"

	alice, err := register(apiAddr, "Verify Alice", "verify.alice@example.com")
	if err != nil {
		log.Fatal(err)
	}
	bob, err := register(apiAddr, "Verify Bob", "verify.bob@example.com")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Registered alice=%s bob=%s", alice.UserID, bob.UserID)

	history, err := get(apiAddr, "/chats/"+bob.UserID+"/history", alice.Token)
	if err != nil {
		log.Fatal("History request failed:", err)
	}
	log.Printf("History: %s", history)

	chats, err := get(apiAddr, "/chats/active_chats", alice.Token)
	if err != nil {
		log.Fatal("Active chats request failed:", err)
	}
	log.Printf("Active chats: %s", chats)

	found, err := get(apiAddr, "/chats/search_users?q=verify", alice.Token)
	if err != nil {
		log.Fatal("Search request failed:", err)
	}
	log.Printf("Search: %s", found)
}
