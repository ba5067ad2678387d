// Command wheel-bot is a terminal admin console. It dials the server's
// websocket, authenticates, and forwards typed lines as bot commands.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"lucky-wheel/internal/adminbot"
	"lucky-wheel/internal/config"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal(err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	auth := adminbot.AuthMessage{Type: "auth", AdminID: cfg.AdminID, AdminName: cfg.AdminID, AdminKey: cfg.AdminKey}
	msg, _ := json.Marshal(auth)
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Fatal(err)
	}

	go forwardStdin(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("connection closed: %v", err)
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case "auth_result":
			var res adminbot.AuthResult
			if err := json.Unmarshal(data, &res); err != nil {
				continue
			}
			if !res.Ok {
				log.Fatalf("auth failed: %s", res.Error)
			}
			fmt.Printf("connected as %s (conn %s), type !help for commands\n", cfg.AdminID, res.ConnID)
		case "command_result":
			var res adminbot.CommandResult
			if err := json.Unmarshal(data, &res); err != nil {
				continue
			}
			if !res.Ok {
				fmt.Printf("error: %s\n", res.Reply)
				continue
			}
			fmt.Println(res.Reply)
		case "announcement":
			var ann adminbot.Announcement
			if err := json.Unmarshal(data, &ann); err != nil {
				continue
			}
			at := time.UnixMilli(ann.TimestampMS).Format("15:04:05")
			fmt.Printf("[%s] %s\n", at, ann.Text)
		}
	}
}

func forwardStdin(conn *websocket.Conn) {
	seq := 0
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		seq++
		cmd := adminbot.CommandMessage{Type: "command", RequestID: strconv.Itoa(seq), Text: line}
		payload, _ := json.Marshal(cmd)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	// stdin closed; tell the server we are leaving.
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
}
