// nexus-cli is a terminal chat shell for a running Nexus server: it creates
// a session, connects the websocket, and relays turns from stdin, printing
// tool notices and reminder fires as they arrive.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vivekps/nexus/internal/protocol"
)

type options struct {
	baseURL     string
	userID      string
	turnTimeout time.Duration
}

type createSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type wsEnvelope struct {
	Type    string `json:"type"`
	State   string `json:"state,omitempty"`
	Text    string `json:"text,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func main() {
	var cfg options
	var turnTimeoutS int
	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8090", "Nexus base URL")
	flag.StringVar(&cfg.userID, "user-id", "cli", "user_id for the session")
	flag.IntVar(&turnTimeoutS, "turn-timeout", 90, "seconds to wait for a turn's answer")
	flag.Parse()
	cfg.turnTimeout = time.Duration(turnTimeoutS) * time.Second

	if err := run(cfg, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "nexus-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg options, in io.Reader) error {
	sessionID, err := createSession(cfg)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	wsURL := strings.Replace(cfg.baseURL, "http", "ws", 1) +
		"/v1/chat/session/ws?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	fmt.Printf("connected, session %s\n", sessionID)
	fmt.Println(`type your message and press enter; "exit" ends the session`)

	// Reader goroutine prints server events; answers are signalled so the
	// prompt loop can wait for the turn to finish. A read failure is handed
	// back to the loop so the deferred close still runs.
	turnDone := make(chan struct{}, 1)
	readerErr := make(chan error, 1)
	go func() {
		for {
			var env wsEnvelope
			if err := conn.ReadJSON(&env); err != nil {
				readerErr <- err
				return
			}
			switch protocol.MessageType(env.Type) {
			case protocol.TypeAssistantText:
				fmt.Printf("Nexus: %s\n", env.Text)
				turnDone <- struct{}{}
			case protocol.TypeToolNotice:
				fmt.Printf("  [%s]\n", env.Notice)
			case protocol.TypeReminderFired:
				fmt.Printf("\n*** %s ***\n> ", env.Message)
			case protocol.TypeStatus:
				if env.State == protocol.StatusDegraded {
					fmt.Println("(server is running without an API key; answers are canned)")
				}
			case protocol.TypeErrorEvent:
				fmt.Printf("error: %s (%s)\n", env.Detail, env.Code)
				turnDone <- struct{}{}
			}
		}
	}()

	scanner := bufio.NewScanner(in)
	for {
		select {
		case err := <-readerErr:
			return fmt.Errorf("connection closed: %w", err)
		default:
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" {
			_ = conn.WriteJSON(protocol.ClientControl{
				Type:      protocol.TypeClientControl,
				SessionID: sessionID,
				Action:    "end",
			})
			return nil
		}

		err := conn.WriteJSON(protocol.UserText{
			Type:      protocol.TypeUserText,
			SessionID: sessionID,
			Text:      text,
			TSMs:      time.Now().UnixMilli(),
		})
		if err != nil {
			return fmt.Errorf("send turn: %w", err)
		}

		select {
		case <-turnDone:
		case err := <-readerErr:
			return fmt.Errorf("connection closed: %w", err)
		case <-time.After(cfg.turnTimeout):
			fmt.Println("(still waiting for the answer; continuing)")
		}
	}
	return scanner.Err()
}

func createSession(cfg options) (string, error) {
	body, _ := json.Marshal(createSessionRequest{UserID: cfg.userID})
	res, err := http.Post(cfg.baseURL+"/v1/chat/session", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	var created createSessionResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return "", err
	}
	if created.SessionID == "" {
		return "", fmt.Errorf("missing session_id in response")
	}
	return created.SessionID, nil
}
