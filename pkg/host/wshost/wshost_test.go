package wshost

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wayfind-dev/wayfind/pkg/host"
)

// newConnPair dials an httptest websocket server and hands back both
// ends of the connection.
func newConnPair(t *testing.T) (client *websocket.Conn, server *websocket.Conn, cleanup func()) {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	serverConnCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverConnCh <- c
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	serverConn := <-serverConnCh

	return clientConn, serverConn, func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
		srv.Close()
	}
}

func TestCurrentMessageSeedsLocation(t *testing.T) {
	client, server, cleanup := newConnPair(t)
	defer cleanup()

	h := New(server, WithReadTimeout(2*time.Second))

	signalled := make(chan host.Location, 1)
	h.Listen(func(loc host.Location) { signalled <- loc })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ReadLoop()
	}()

	if err := client.WriteJSON(Message{Type: "current", URL: "/start?x=1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.WriteJSON(Message{Type: "navigate", URL: "/next"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case loc := <-signalled:
		if loc.Path != "/next" {
			t.Errorf("signalled Path = %q, want %q", loc.Path, "/next")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("navigate message never reached the listener")
	}

	// The seed message must update the location without signalling.
	if got := len(signalled); got != 0 {
		t.Errorf("%d extra signals delivered", got)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLoop did not return after close")
	}

	if h.Location().Path != "/next" {
		t.Errorf("Location().Path = %q, want %q", h.Location().Path, "/next")
	}
}

func TestPopCarriesState(t *testing.T) {
	client, server, cleanup := newConnPair(t)
	defer cleanup()

	h := New(server, WithReadTimeout(2*time.Second))

	signalled := make(chan host.Location, 1)
	h.Listen(func(loc host.Location) { signalled <- loc })

	go func() { _ = h.ReadLoop() }()

	msg := Message{Type: "pop", URL: "/back", State: []byte(`{"scroll":120}`)}
	if err := client.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case loc := <-signalled:
		state, ok := loc.State.(map[string]any)
		if !ok {
			t.Fatalf("State = %#v, want decoded JSON object", loc.State)
		}
		if state["scroll"] != float64(120) {
			t.Errorf("scroll = %v, want 120", state["scroll"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pop message never reached the listener")
	}
}

func TestPushReachesClient(t *testing.T) {
	client, server, cleanup := newConnPair(t)
	defer cleanup()

	h := New(server, WithWriteTimeout(2*time.Second))
	h.Push("/users/7?tab=posts")

	if got := h.Location().Path; got != "/users/7" {
		t.Errorf("Location().Path = %q, want %q", got, "/users/7")
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "push" || msg.URL != "/users/7?tab=posts" {
		t.Errorf("client received %+v", msg)
	}

	h.Replace("/users/8")
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "replace" || msg.URL != "/users/8" {
		t.Errorf("client received %+v", msg)
	}
}

func TestUnknownMessageTypeIsIgnored(t *testing.T) {
	client, server, cleanup := newConnPair(t)
	defer cleanup()

	h := New(server, WithReadTimeout(2*time.Second))
	signalled := make(chan host.Location, 1)
	h.Listen(func(loc host.Location) { signalled <- loc })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ReadLoop()
	}()

	if err := client.WriteJSON(Message{Type: "telemetry", URL: "/x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.WriteJSON(Message{Type: "navigate", URL: "/real"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case loc := <-signalled:
		if loc.Path != "/real" {
			t.Errorf("Path = %q, want %q (unknown types must not signal)", loc.Path, "/real")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("navigate message never reached the listener")
	}
}
