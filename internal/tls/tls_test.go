package tls

import (
	"crypto/tls"
	"crypto/x509"
	"testing"
)

func TestLoadOrGenerate_SelfSigned(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrGenerate("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Certificates) != 1 {
		t.Fatalf("Certificates count: got %d, want 1", len(cfg.Certificates))
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion: got %x, want TLS 1.2", cfg.MinVersion)
	}

	cert, err := x509.ParseCertificate(cfg.Certificates[0].Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse generated certificate: %v", err)
	}
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName: got %q, want %q", cert.Subject.CommonName, "localhost")
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("certificate should be valid for localhost: %v", err)
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("certificate should be valid for 127.0.0.1: %v", err)
	}
}

func TestLoadOrGenerate_MissingCertFile(t *testing.T) {
	t.Parallel()

	_, err := LoadOrGenerate("/nonexistent/cert.pem", "/nonexistent/key.pem")
	if err == nil {
		t.Error("expected error for missing certificate file, got nil")
	}
}
