package webhost

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

func newTestRouter() *dispatch.Router {
	r := dispatch.New()
	noop := dispatch.HandlerFunc(func(*dispatch.Context) dispatch.Decision {
		return dispatch.Continue()
	})
	r.On("/", noop, dispatch.WithName("home"))
	r.On("/users/{id}", noop, dispatch.WithName("user"), dispatch.WithPriority(2))
	return r
}

func TestShellServedForResolvablePaths(t *testing.T) {
	shell := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>shell</html>")
	})
	srv := httptest.NewServer(New(newTestRouter(), WithShell(shell)))
	defer srv.Close()

	for _, path := range []string{"/", "/users/42", "/users/42/"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, res.StatusCode)
		}
		if !strings.Contains(string(body), "shell") {
			t.Errorf("GET %s body = %q, want the shell", path, body)
		}
	}
}

func TestUnresolvablePathIs404(t *testing.T) {
	srv := httptest.NewServer(New(newTestRouter()))
	defer srv.Close()

	for _, path := range []string{"/nope", "/users/42/extra"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, res.StatusCode)
		}
	}
}

func TestRouteTableEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(newTestRouter()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/wayfind/routes")
	if err != nil {
		t.Fatalf("GET /wayfind/routes: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var infos []dispatch.RouteInfo
	if err := json.NewDecoder(res.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("routes = %+v, want 2 entries", infos)
	}
	// Scan order: priority 2 first.
	if infos[0].Name != "user" || infos[1].Name != "home" {
		t.Errorf("routes out of scan order: %+v", infos)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhost_test_marker_total",
		Help: "marker",
	}))

	srv := httptest.NewServer(New(
		newTestRouter(),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if !strings.Contains(string(body), "webhost_test_marker_total") {
		t.Error("metrics output missing registered metric")
	}
}

func TestDefaultShell(t *testing.T) {
	srv := httptest.NewServer(New(newTestRouter()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), `id="app"`) {
		t.Errorf("default shell body = %q", body)
	}
}
