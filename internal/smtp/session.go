package smtp

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/don-san-sec/samurai/internal/reporter"
)

// Session states for the SMTP state machine.
const (
	stateConnected = iota
	stateGreeted
	stateAuthOK
	stateMailFrom
	stateRcptTo
)

// idleTimeout is the maximum time a session can remain idle before being closed.
const idleTimeout = 60 * time.Second

// defaultMaxMessageSize is the default DATA payload cap (25 MB).
const defaultMaxMessageSize = 25 * 1024 * 1024

// Session represents a single intake connection and manages the SMTP
// protocol state machine. The DATA payload is the raw suspicious message;
// the envelope sender identifies the reporter and the envelope recipient
// selects the report kind.
type Session struct {
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	state    int
	auth     *Authenticator
	reporter *reporter.Reporter
	router   KindRouter
	hostname string
	maxSize  int64

	// TLS support
	tlsConfig *tls.Config
	tlsActive bool

	// Current transaction
	mailFrom string
	rcptTo   []string
}

// NewSession creates a new intake session for the given connection.
func NewSession(conn net.Conn, auth *Authenticator, rep *reporter.Reporter, router KindRouter, hostname string, tlsConfig *tls.Config, maxSize int64) *Session {
	if maxSize <= 0 {
		maxSize = defaultMaxMessageSize
	}
	return &Session{
		conn:      conn,
		reader:    bufio.NewReader(conn),
		writer:    bufio.NewWriter(conn),
		state:     stateConnected,
		auth:      auth,
		reporter:  rep,
		router:    router,
		hostname:  hostname,
		tlsConfig: tlsConfig,
		maxSize:   maxSize,
	}
}

// Handle runs the session, processing commands until the client disconnects
// or an error occurs.
func (s *Session) Handle(ctx context.Context) {
	defer s.conn.Close()

	s.writeLine("220 %s ESMTP samurai report intake", s.hostname)

	for {
		select {
		case <-ctx.Done():
			s.writeLine("421 Service shutting down")
			return
		default:
		}

		if err := s.conn.SetDeadline(time.Now().Add(idleTimeout)); err != nil {
			slog.Error("failed to set connection deadline", "error", err)
			return
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				slog.Debug("connection read error", "error", err)
			}
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		cmd, arg := parseCommand(line)
		done := s.handleCommand(ctx, cmd, arg)
		if done {
			return
		}
	}
}

// handleCommand processes a single SMTP command and returns true if the session should end.
func (s *Session) handleCommand(ctx context.Context, cmd, arg string) bool {
	switch cmd {
	case "EHLO", "HELO":
		s.handleEHLO(cmd, arg)
	case "STARTTLS":
		s.handleSTARTTLS()
	case "AUTH":
		s.handleAUTH(arg)
	case "MAIL":
		s.handleMAIL(arg)
	case "RCPT":
		s.handleRCPT(arg)
	case "DATA":
		s.handleDATA(ctx)
	case "RSET":
		s.handleRSET()
	case "NOOP":
		s.writeLine("250 OK")
	case "QUIT":
		s.writeLine("221 Bye")
		return true
	default:
		s.writeLine("500 Unrecognized command")
	}
	return false
}

// handleEHLO processes EHLO/HELO commands.
func (s *Session) handleEHLO(cmd, arg string) {
	if arg == "" {
		s.writeLine("501 Syntax: %s hostname", cmd)
		return
	}

	if cmd == "HELO" {
		s.state = stateGreeted
		s.writeLine("250 %s Hello %s", s.hostname, arg)
		return
	}

	// EHLO response with capabilities
	s.state = stateGreeted
	s.writeLine("250-%s Hello %s", s.hostname, arg)

	if s.tlsConfig != nil && !s.tlsActive {
		s.writeLine("250-STARTTLS")
	}
	if s.auth.Enabled() {
		s.writeLine("250-AUTH PLAIN LOGIN")
	}
	s.writeLine("250-SIZE %d", s.maxSize)
	s.writeLine("250 OK")
}

// handleSTARTTLS upgrades the connection to TLS.
func (s *Session) handleSTARTTLS() {
	if s.tlsConfig == nil {
		s.writeLine("454 TLS not available")
		return
	}
	if s.tlsActive {
		s.writeLine("454 TLS already active")
		return
	}

	s.writeLine("220 Ready to start TLS")

	tlsConn := tls.Server(s.conn, s.tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		slog.Error("TLS handshake failed", "error", err)
		return
	}

	s.conn = tlsConn
	s.reader = bufio.NewReader(tlsConn)
	s.writer = bufio.NewWriter(tlsConn)
	s.tlsActive = true
	s.state = stateConnected
}

// handleAUTH processes AUTH commands (PLAIN and LOGIN mechanisms).
func (s *Session) handleAUTH(arg string) {
	if s.state < stateGreeted {
		s.writeLine("503 Send EHLO/HELO first")
		return
	}
	if !s.auth.Enabled() {
		s.writeLine("503 AUTH not available")
		return
	}

	parts := strings.SplitN(arg, " ", 2)
	mechanism := strings.ToUpper(parts[0])

	switch mechanism {
	case "PLAIN":
		s.handleAuthPlain(parts)
	case "LOGIN":
		s.handleAuthLogin()
	default:
		s.writeLine("504 Unrecognized authentication type")
	}
}

// handleAuthPlain processes AUTH PLAIN authentication.
func (s *Session) handleAuthPlain(parts []string) {
	var encoded string

	if len(parts) > 1 && parts[1] != "" {
		// Credentials provided inline: AUTH PLAIN <base64>
		encoded = parts[1]
	} else {
		// Challenge-response: send 334 and wait for credentials
		s.writeLine("334")
		line, err := s.reader.ReadString('\n')
		if err != nil {
			slog.Error("failed to read AUTH PLAIN response", "error", err)
			return
		}
		encoded = strings.TrimRight(line, "\r\n")
	}

	if encoded == "*" {
		s.writeLine("501 Authentication cancelled")
		return
	}

	if err := s.auth.VerifyPlain(encoded); err != nil {
		s.writeLine("535 Authentication failed")
		return
	}

	s.state = stateAuthOK
	s.writeLine("235 Authentication successful")
}

// handleAuthLogin processes AUTH LOGIN authentication via challenge-response.
func (s *Session) handleAuthLogin() {
	// Challenge for username (base64 encoded "Username:")
	s.writeLine("334 VXNlcm5hbWU6")
	userLine, err := s.reader.ReadString('\n')
	if err != nil {
		slog.Error("failed to read AUTH LOGIN username", "error", err)
		return
	}
	encodedUser := strings.TrimRight(userLine, "\r\n")

	if encodedUser == "*" {
		s.writeLine("501 Authentication cancelled")
		return
	}

	// Challenge for password (base64 encoded "Password:")
	s.writeLine("334 UGFzc3dvcmQ6")
	passLine, err := s.reader.ReadString('\n')
	if err != nil {
		slog.Error("failed to read AUTH LOGIN password", "error", err)
		return
	}
	encodedPass := strings.TrimRight(passLine, "\r\n")

	if encodedPass == "*" {
		s.writeLine("501 Authentication cancelled")
		return
	}

	if err := s.auth.VerifyLogin(encodedUser, encodedPass); err != nil {
		s.writeLine("535 Authentication failed")
		return
	}

	s.state = stateAuthOK
	s.writeLine("235 Authentication successful")
}

// handleMAIL processes the MAIL FROM command. The envelope sender doubles
// as the reporter identity, so it must be present.
func (s *Session) handleMAIL(arg string) {
	if s.state < stateGreeted {
		s.writeLine("503 Send EHLO/HELO first")
		return
	}
	if s.auth.Enabled() && s.state < stateAuthOK {
		s.writeLine("530 Authentication required")
		return
	}

	upper := strings.ToUpper(arg)
	if !strings.HasPrefix(upper, "FROM:") {
		s.writeLine("501 Syntax: MAIL FROM:<address>")
		return
	}

	addr := extractAddress(arg[5:])
	if addr == "" {
		s.writeLine("501 Syntax: MAIL FROM:<address>")
		return
	}

	s.mailFrom = addr
	s.rcptTo = nil
	s.state = stateMailFrom
	s.writeLine("250 OK")
}

// handleRCPT processes the RCPT TO command. Only configured intake
// addresses are accepted as recipients.
func (s *Session) handleRCPT(arg string) {
	if s.state < stateMailFrom {
		s.writeLine("503 Send MAIL FROM first")
		return
	}

	upper := strings.ToUpper(arg)
	if !strings.HasPrefix(upper, "TO:") {
		s.writeLine("501 Syntax: RCPT TO:<address>")
		return
	}

	addr := extractAddress(arg[3:])
	if addr == "" {
		s.writeLine("501 Syntax: RCPT TO:<address>")
		return
	}

	if _, ok := s.router.Route([]string{addr}); !ok {
		s.writeLine("550 Unknown report address")
		return
	}

	s.rcptTo = append(s.rcptTo, addr)
	s.state = stateRcptTo
	s.writeLine("250 OK")
}

// handleDATA reads the forwarded message and submits it as a report.
func (s *Session) handleDATA(ctx context.Context) {
	if s.state < stateRcptTo {
		s.writeLine("503 Send RCPT TO first")
		return
	}

	s.writeLine("354 Start mail input; end with <CRLF>.<CRLF>")

	var dataBuilder strings.Builder
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			slog.Error("error reading DATA", "error", err)
			return
		}

		// Check for end of data marker
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "." {
			break
		}

		// Dot-stuffing: lines starting with ".." have the leading dot removed
		if strings.HasPrefix(trimmed, "..") {
			line = line[1:]
		}

		if int64(dataBuilder.Len()+len(line)) > s.maxSize {
			s.writeLine("552 Message exceeds maximum size")
			s.discardData()
			s.resetTransaction()
			return
		}
		dataBuilder.WriteString(line)
	}

	kind, ok := s.router.Route(s.rcptTo)
	if !ok {
		s.writeLine("550 Unknown report address")
		s.resetTransaction()
		return
	}

	err := s.reporter.ReportRaw(ctx, []byte(dataBuilder.String()), kind, s.mailFrom)
	if err != nil {
		slog.Error("report submission failed",
			"kind", string(kind),
			"reporter", s.mailFrom,
			"error", err,
		)
		s.writeLine("554 %s", reporter.UserMessage(err))
		s.resetTransaction()
		return
	}

	s.writeLine("250 OK report sent to security team")
	s.resetTransaction()
}

// discardData consumes the remainder of an oversized DATA payload up to the
// terminator so the session stays in sync.
func (s *Session) discardData() {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return
		}
		if strings.TrimRight(line, "\r\n") == "." {
			return
		}
	}
}

// handleRSET resets the current transaction state.
func (s *Session) handleRSET() {
	s.resetTransaction()
	s.writeLine("250 OK")
}

// resetTransaction clears the current mail transaction state without
// affecting the session state (greeting, auth).
func (s *Session) resetTransaction() {
	s.mailFrom = ""
	s.rcptTo = nil

	// Reset state to post-auth or post-greet
	if s.auth.Enabled() && s.state >= stateAuthOK {
		s.state = stateAuthOK
	} else if s.state >= stateGreeted {
		s.state = stateGreeted
	}
}

// writeLine writes a formatted line to the client, followed by \r\n.
func (s *Session) writeLine(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	_, err := s.writer.WriteString(line + "\r\n")
	if err != nil {
		slog.Error("failed to write to client", "error", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		slog.Error("failed to flush to client", "error", err)
	}
}

// parseCommand splits an SMTP command line into the command verb and its argument.
func parseCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToUpper(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}
	return cmd, arg
}

// extractAddress extracts an email address from an SMTP parameter,
// handling both angle-bracket and bare formats.
func extractAddress(s string) string {
	s = strings.TrimSpace(s)

	// Handle angle-bracket format: <user@example.com>
	if strings.HasPrefix(s, "<") {
		end := strings.Index(s, ">")
		if end < 0 {
			return ""
		}
		return s[1:end]
	}

	// Bare address format
	return s
}
