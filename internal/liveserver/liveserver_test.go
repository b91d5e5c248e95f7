package liveserver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServerStreamsExitCode(t *testing.T) {
	srv := NewServer(2 * time.Second)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(request{Program: "밙밦다희", Input: ""}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var exit *Message
	for exit == nil {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Type == "exit" || msg.Type == "error" {
			m := msg
			exit = &m
		}
	}

	if exit.Type != "exit" {
		t.Fatalf("final message type = %q, want exit (data: %q)", exit.Type, exit.Data)
	}
	if exit.ExitCode != 11 {
		t.Fatalf("exit code = %d, want 11", exit.ExitCode)
	}
}

func TestServerStreamsStdoutBeforeExit(t *testing.T) {
	srv := NewServer(2 * time.Second)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(request{Program: "밙망희", Input: ""}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var sawStdout bool
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Type == "stdout" {
			if msg.Data != "5" {
				t.Fatalf("stdout data = %q, want %q", msg.Data, "5")
			}
			sawStdout = true
		}
		if msg.Type == "exit" || msg.Type == "error" {
			break
		}
	}
	if !sawStdout {
		t.Fatalf("never received a stdout frame")
	}
}
