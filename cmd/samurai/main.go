// Package main is the entry point for samurai, a phishing report forwarder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/don-san-sec/samurai/internal/config"
	"github.com/don-san-sec/samurai/internal/email"
	"github.com/don-san-sec/samurai/internal/extract"
	"github.com/don-san-sec/samurai/internal/provider"
	"github.com/don-san-sec/samurai/internal/provider/ses"
	"github.com/don-san-sec/samurai/internal/provider/stdout"
	"github.com/don-san-sec/samurai/internal/report"
	"github.com/don-san-sec/samurai/internal/reporter"
	"github.com/don-san-sec/samurai/internal/smtp"
	"github.com/don-san-sec/samurai/internal/source/gmail"
	intaketls "github.com/don-san-sec/samurai/internal/tls"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "report":
		runReport(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  samurai report [-config FILE] (-id MESSAGE_ID | -file PATH) [-kind phishing|investigation]
  samurai serve  [-config FILE]`)
}

// runReport performs a one-shot submission: fetch or read the flagged
// message, extract, render and deliver.
func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	messageID := fs.String("id", "", "mailbox message id to report")
	filePath := fs.String("file", "", "local .eml file to report instead of a mailbox message")
	kindFlag := fs.String("kind", string(email.KindPhishing), "report kind: phishing or investigation")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	setupLogger(cfg.Logging.Level)

	kind := email.ReportKind(*kindFlag)
	if !kind.Valid() {
		fmt.Fprintf(os.Stderr, "unknown report kind %q\n", *kindFlag)
		os.Exit(2)
	}

	rep := buildReporter(cfg, *filePath == "")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var err error
	switch {
	case *filePath != "":
		var raw []byte
		raw, err = os.ReadFile(*filePath)
		if err != nil {
			slog.Error("failed to read message file", "path", *filePath, "error", err)
			os.Exit(1)
		}
		err = rep.ReportRaw(ctx, raw, kind, cfg.Security.Reporter)
	default:
		err = rep.Report(ctx, *messageID, kind, cfg.Security.Reporter)
	}

	if err != nil {
		slog.Error("report failed", "error", err)
		fmt.Fprintln(os.Stderr, reporter.UserMessage(err))
		os.Exit(1)
	}

	if kind == email.KindInvestigation {
		fmt.Println("Investigation requested. The security team will contact you soon.")
	} else {
		fmt.Println("Thank you for reporting. The security team has been notified.")
	}
}

// runServe starts the SMTP intake listener.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	setupLogger(cfg.Logging.Level)

	tlsConfig, err := intaketls.LoadOrGenerate(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		slog.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	tlsMode := "self-signed"
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		tlsMode = "file"
	}

	rep := buildReporter(cfg, false)

	server := smtp.New(smtp.ServerConfig{
		ListenAddr: cfg.Intake.Listen,
		Hostname:   "localhost",
		Reporter:   rep,
		Router: smtp.KindRouter{
			PhishingAddress:      cfg.Intake.PhishingAddress,
			InvestigationAddress: cfg.Intake.InvestigationAddress,
		},
		TLSConfig:      tlsConfig,
		AuthUsername:   cfg.Intake.Username,
		AuthPassword:   cfg.Intake.Password,
		MaxMessageSize: cfg.Intake.MaxMessageSize,
	})

	slog.Info("starting samurai intake",
		"listen", cfg.Intake.Listen,
		"security_email", cfg.Security.Email,
		"auth_enabled", cfg.AuthEnabled(),
		"tls_mode", tlsMode,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("samurai intake stopped")
}

// mustLoadConfig loads and validates configuration from the specified path
// (YAML + env override) or from environment variables only.
func mustLoadConfig(path string) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// buildReporter wires the extraction, rendering and delivery components
// from configuration. Mailbox sources are only required when needsSource
// is true (reporting by message id).
func buildReporter(cfg *config.Config, needsSource bool) *reporter.Reporter {
	var raw *gmail.Client
	if cfg.GmailConfigured() {
		raw = gmail.New(gmail.ClientConfig{
			ClientID:     cfg.Gmail.ClientID,
			ClientSecret: cfg.Gmail.ClientSecret,
			RefreshToken: cfg.Gmail.RefreshToken,
		})
	} else if needsSource {
		slog.Error("reporting by message id requires GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN")
		os.Exit(1)
	}

	repCfg := reporter.Config{
		SecurityEmail:       cfg.Security.Email,
		PhishingPrefix:      cfg.Security.PhishingPrefix,
		InvestigationPrefix: cfg.Security.InvestigationPrefix,
	}

	if raw != nil {
		return reporter.New(repCfg, raw, raw, selectExtractor(cfg), report.NewRenderer(), selectProvider(cfg))
	}
	return reporter.New(repCfg, nil, nil, selectExtractor(cfg), report.NewRenderer(), selectProvider(cfg))
}

// selectExtractor chooses the metadata extraction implementation.
func selectExtractor(cfg *config.Config) extract.Extractor {
	if cfg.Extractor == "mime" {
		return extract.MIME{}
	}
	return extract.Regex{}
}

// selectProvider chooses the report delivery backend based on configuration.
// If the PROVIDER env var is set, it takes precedence; otherwise SES is
// auto-detected, falling back to stdout.
func selectProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("SES provider selected but SES_REGION and SES_SENDER are required")
			os.Exit(1)
		}
		return newSESProvider(cfg)

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New()

	default:
		if cfg.SESConfigured() {
			return newSESProvider(cfg)
		}
		slog.Info("no provider configured, using stdout provider")
		return stdout.New()
	}
}

func newSESProvider(cfg *config.Config) provider.Provider {
	slog.Info("using AWS SES provider",
		"region", cfg.SES.Region,
		"sender", cfg.SES.Sender,
	)
	p, err := ses.New(context.Background(), ses.SESProviderConfig{
		Region:          cfg.SES.Region,
		AccessKeyID:     cfg.SES.AccessKeyID,
		SecretAccessKey: cfg.SES.SecretAccessKey,
		Sender:          cfg.SES.Sender,
	})
	if err != nil {
		slog.Error("failed to create SES provider", "error", err)
		os.Exit(1)
	}
	return p
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
