package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/metrics"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// Runner coordinates MCP server startup.
type Runner struct {
	Service *Service
	Name    string
	Version string
	Log     zerolog.Logger
	// Metrics, when set, is served at /metrics next to the HTTP endpoint.
	Metrics *metrics.Metrics

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// NewServer builds the MCP server with every zdash tool and resource.
func NewServer(name, version string, svc *Service) *server.MCPServer {
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read Z+ dashboard sections and records, and approve, reject, share, assign or resolve them as the signed-in user."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil || r.Service.App == nil {
		return errors.New("mcp runner requires a service")
	}
	name := r.Name
	if name == "" {
		name = "zdash"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := NewServer(name, version, r.Service)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		r.Log.Info().Msg("mcp: serving on stdio")
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert != "" && r.HTTPServerKey == "") || (r.HTTPServerCert == "" && r.HTTPServerKey != "") {
		return errors.New("both http tls cert and key must be provided")
	}

	handler := server.NewStreamableHTTPServer(srv)

	path := r.HTTPEndpointPath
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	router := mux.NewRouter()
	router.Handle(path, handler)
	router.HandleFunc("/healthz", r.healthz).Methods(http.MethodGet)
	if r.Metrics != nil {
		router.Handle("/metrics", r.Metrics.Handler()).Methods(http.MethodGet)
	}

	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	r.Log.Info().Str("addr", ln.Addr().String()).Str("path", path).Msg("mcp: listening")
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	if r.HTTPServerCert != "" && r.HTTPServerKey != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// healthz answers 200 while a session is stored and 503 once it is gone,
// since every tool call would fail from then on.
func (r Runner) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sess, ok := r.Service.App.Session()
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": app.ErrNotLoggedIn.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "selfId": sess.User.SelfID, "role": sess.User.UserType.Label()})
}
