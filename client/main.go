// Terminal chat client for manual testing: logs in against the api service,
// opens a websocket to the gateway for one counterpart, and relays stdin.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func login(apiAddr, email, password string) (tokenResponse, error) {
	reqBody, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(apiAddr+"/login", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return tokenResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return tokenResponse{}, fmt.Errorf("login failed: %s", string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return tokenResponse{}, err
	}
	return tr, nil
}

func main() {
	gatewayAddr := flag.String("addr", "localhost:8080", "gateway service address")
	apiAddr := flag.String("api", "http://localhost:8081", "api service address")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	counterpart := flag.String("to", "", "counterpart user id")
	flag.Parse()

	if *email == "" || *password == "" || *counterpart == "" {
		log.Fatal("-email, -password and -to are required")
	}

	log.Printf("Logging in as %s...", *email)
	tr, err := login(*apiAddr, *email, *password)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Logged in, user id %s", tr.UserID)

	u := url.URL{Scheme: "ws", Host: *gatewayAddr, Path: "/ws/chat/" + *counterpart}
	log.Printf("connecting to %s", u.String())

	header := http.Header{}
	header.Add("Authorization", "Bearer "+tr.Token)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, payload, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}

			var event model.MessageEvent
			if err := json.Unmarshal(payload, &event); err != nil || event.Type != model.FrameChatMessage {
				fmt.Printf("\r%s\n> ", payload)
				continue
			}
			fmt.Printf("\r%s: %s\n> ", event.Sender.Name, event.Text)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			text := scanner.Text()
			if text == "" {
				fmt.Print("> ")
				continue
			}
			if text == "/quit" {
				interrupt <- os.Interrupt
				break
			}

			frame, _ := json.Marshal(model.Envelope{
				Type:       model.FrameChatMessage,
				ReceiverID: *counterpart,
				Text:       text,
			})
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Println("write:", err)
				return
			}
			fmt.Print("> ")
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("interrupt, closing connection")
			err := c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
