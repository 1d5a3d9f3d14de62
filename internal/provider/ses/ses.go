// Package ses implements a Provider that sends reports via AWS SES v2.
package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"github.com/don-san-sec/samurai/internal/email"
)

// maxRetries is the maximum number of retry attempts for transient failures.
const maxRetries = 3

// baseRetryDelay is the initial delay for exponential backoff.
const baseRetryDelay = 1 * time.Second

// SESProviderConfig holds the configuration for creating a SESProvider.
type SESProviderConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

// SESProvider delivers reports via the AWS SES v2 API. Every report carries
// the original message as a message/rfc822 attachment, so delivery always
// uses the raw MIME path.
type SESProvider struct {
	sender string
	client SendEmailAPI
}

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// New creates a new SESProvider with the given configuration.
func New(ctx context.Context, cfg SESProviderConfig) (*SESProvider, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESProvider{
		sender: cfg.Sender,
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// NewWithClient creates a SESProvider with a custom client, used for testing.
func NewWithClient(sender string, client SendEmailAPI) *SESProvider {
	return &SESProvider{
		sender: sender,
		client: client,
	}
}

// Send delivers a report via AWS SES v2, retrying transient failures with
// exponential backoff.
func (s *SESProvider) Send(ctx context.Context, rep *email.Report) error {
	raw, err := buildRawMessage(s.sender, rep)
	if err != nil {
		return fmt.Errorf("failed to build raw message: %w", err)
	}

	input := &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: raw,
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying SES API request",
				"attempt", attempt,
				"max_retries", maxRetries,
			)
			delay := backoffDelay(attempt)
			if err := sleepWithContext(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled during retry wait: %w", err)
			}
		}

		_, err := s.client.SendEmail(ctx, input)
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("SES API error",
			"attempt", attempt,
			"error", err,
		)
	}

	return fmt.Errorf("SES API request failed after %d retries: %w", maxRetries, lastErr)
}

// Name returns the provider name.
func (s *SESProvider) Name() string {
	return "ses"
}

// buildRawMessage constructs the raw MIME message for a report: a
// multipart/mixed envelope holding a multipart/alternative body (plain +
// HTML) and the preserved original as a message/rfc822 attachment.
func buildRawMessage(sender string, rep *email.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", sender)
	fmt.Fprintf(&buf, "To: %s\r\n", rep.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", rep.Subject))
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID(sender))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	mixed := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// Body: plain and HTML alternatives
	altHeader := make(textproto.MIMEHeader)
	altBuf := &bytes.Buffer{}
	alt := multipart.NewWriter(altBuf)
	altHeader.Set("Content-Type",
		fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary()))

	if err := writeBodyPart(alt, "text/plain; charset=UTF-8", rep.PlainBody); err != nil {
		return nil, err
	}
	if err := writeBodyPart(alt, "text/html; charset=UTF-8", rep.HTMLBody); err != nil {
		return nil, err
	}
	alt.Close()

	bodyPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	bodyPart.Write(altBuf.Bytes())

	// Artifact: the original message, verbatim
	attHeader := make(textproto.MIMEHeader)
	attHeader.Set("Content-Type", rep.Artifact.ContentType)
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", mime.QEncoding.Encode("UTF-8", rep.Artifact.Filename)))

	attPart, err := mixed.CreatePart(attHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact part: %w", err)
	}
	attPart.Write([]byte(encodeBase64WithLineBreaks(rep.Artifact.Content)))

	mixed.Close()
	return buf.Bytes(), nil
}

// writeBodyPart adds one alternative body part with the given content type.
func writeBodyPart(w *multipart.Writer, contentType, body string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create body part: %w", err)
	}
	part.Write([]byte(body))
	return nil
}

// messageID generates a unique Message-ID under the sender's domain.
func messageID(sender string) string {
	domain := "localhost"
	if i := strings.LastIndex(sender, "@"); i >= 0 && i < len(sender)-1 {
		domain = sender[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character line breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(attempt int) time.Duration {
	delay := baseRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleepWithContext waits for the specified duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
