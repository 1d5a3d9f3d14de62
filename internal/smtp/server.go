package smtp

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/don-san-sec/samurai/internal/email"
	"github.com/don-san-sec/samurai/internal/reporter"
)

// shutdownTimeout is the maximum time to wait for in-flight connections
// during graceful shutdown.
const shutdownTimeout = 30 * time.Second

// KindRouter maps intake recipient addresses to report kinds: forwarding to
// the phishing address files an awareness-only report, forwarding to the
// investigation address requests a response.
type KindRouter struct {
	PhishingAddress      string
	InvestigationAddress string
}

// Route resolves the report kind for a set of envelope recipients. The
// first recipient matching a configured intake address wins; local-part
// matching is accepted so the listener works behind domain rewrites.
func (k KindRouter) Route(rcpts []string) (email.ReportKind, bool) {
	for _, rcpt := range rcpts {
		if addressMatches(rcpt, k.PhishingAddress) {
			return email.KindPhishing, true
		}
		if addressMatches(rcpt, k.InvestigationAddress) {
			return email.KindInvestigation, true
		}
	}
	return "", false
}

func addressMatches(rcpt, configured string) bool {
	if configured == "" {
		return false
	}
	if strings.EqualFold(rcpt, configured) {
		return true
	}
	return strings.EqualFold(localPart(rcpt), localPart(configured))
}

func localPart(addr string) string {
	if i := strings.Index(addr, "@"); i >= 0 {
		return addr[:i]
	}
	return addr
}

// ServerConfig holds the configuration for the intake server.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":2525").
	ListenAddr string

	// Hostname is the server hostname used in EHLO responses.
	Hostname string

	// Reporter handles each accepted submission.
	Reporter *reporter.Reporter

	// Router maps recipient addresses to report kinds.
	Router KindRouter

	// TLSConfig is the TLS configuration for STARTTLS support.
	// If nil, STARTTLS is not advertised.
	TLSConfig *tls.Config

	// AuthUsername and AuthPassword configure SMTP AUTH.
	// If both are empty, authentication is not required.
	AuthUsername string
	AuthPassword string

	// MaxMessageSize caps the DATA payload in bytes.
	MaxMessageSize int64
}

// Server is the intake SMTP server. It accepts forwarded messages and
// submits each one through the configured Reporter.
type Server struct {
	config   ServerConfig
	auth     *Authenticator
	listener net.Listener

	// wg tracks in-flight session goroutines for graceful shutdown.
	wg sync.WaitGroup
}

// New creates a new intake Server with the given configuration.
func New(cfg ServerConfig) *Server {
	if cfg.Hostname == "" {
		cfg.Hostname = "localhost"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	return &Server{
		config: cfg,
		auth:   NewAuthenticator(cfg.AuthUsername, cfg.AuthPassword),
	}
}

// ListenAndServe starts the intake server and blocks until the context is
// cancelled. On cancellation it stops accepting new connections and waits
// up to 30 seconds for in-flight sessions to complete.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return err
	}
	s.listener = ln

	slog.Info("report intake listening",
		"addr", ln.Addr().String(),
		"auth_enabled", s.auth.Enabled(),
		"tls_enabled", s.config.TLSConfig != nil,
	)

	// Monitor context for shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down intake server")
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// Expected error from listener close during shutdown
				s.waitForSessions()
				return nil
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			session := NewSession(
				conn,
				s.auth,
				s.config.Reporter,
				s.config.Router,
				s.config.Hostname,
				s.config.TLSConfig,
				s.config.MaxMessageSize,
			)
			session.Handle(ctx)
		}()
	}
}

// waitForSessions waits for all in-flight sessions to complete,
// with a maximum timeout to prevent indefinite blocking.
func (s *Server) waitForSessions() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("all sessions completed")
	case <-time.After(shutdownTimeout):
		slog.Warn("shutdown timeout reached, forcing close")
	}
}

// Addr returns the listener address, or empty string if not listening.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
