// Package reporter orchestrates a single "report this email" action:
// two-tier metadata extraction, rendering, payload assembly and delivery.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/don-san-sec/samurai/internal/email"
	"github.com/don-san-sec/samurai/internal/extract"
	"github.com/don-san-sec/samurai/internal/provider"
	"github.com/don-san-sec/samurai/internal/report"
	"github.com/don-san-sec/samurai/internal/sanitize"
	"github.com/don-san-sec/samurai/internal/source"
)

// artifactContentType is the MIME type of the preserved original message.
const artifactContentType = "message/rfc822"

// Config holds the report routing settings, validated once at startup and
// passed in explicitly; there is no ambient global configuration.
type Config struct {
	// SecurityEmail receives all reports.
	SecurityEmail string
	// PhishingPrefix and InvestigationPrefix are prepended to the report
	// subject depending on the report kind.
	PhishingPrefix      string
	InvestigationPrefix string
}

// Reporter drives the report flow. Each call is independent and stateless;
// records are created, consumed and discarded within one call.
type Reporter struct {
	cfg       Config
	raw       source.Raw
	summary   source.Summary
	extractor extract.Extractor
	renderer  *report.Renderer
	provider  provider.Provider
	now       func() time.Time
}

// New creates a Reporter. The raw and summary sources may be nil when only
// the ExtractRaw/ReportRaw paths are used (intake mode, local files).
func New(cfg Config, raw source.Raw, summary source.Summary, ex extract.Extractor, rend *report.Renderer, prov provider.Provider) *Reporter {
	return &Reporter{
		cfg:       cfg,
		raw:       raw,
		summary:   summary,
		extractor: ex,
		renderer:  rend,
		provider:  prov,
		now:       time.Now,
	}
}

// Extract retrieves and extracts metadata for the given message id using the
// two-tier strategy: the primary tier fetches raw bytes and runs rich
// extraction; on any failure it falls back once to the summary source, which
// yields a strict subset of fields. Exactly one tier populates the record.
func (r *Reporter) Extract(ctx context.Context, id string) (*email.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNoMessageSelected
	}
	if r.raw == nil || r.summary == nil {
		return nil, fmt.Errorf("no message source configured")
	}

	raw, err := r.raw.Raw(ctx, id)
	if err == nil {
		return r.ExtractRaw(raw), nil
	}

	slog.Warn("primary retrieval failed, falling back to summary source",
		"message_id", id,
		"error", err,
	)

	sum, serr := r.summary.Summary(ctx, id)
	if serr != nil {
		slog.Error("fallback retrieval failed",
			"message_id", id,
			"error", serr,
		)
		return nil, fmt.Errorf("%w: %v", ErrTotalRetrievalFailure, serr)
	}

	return r.recordFromSummary(sum), nil
}

// ExtractRaw runs the rich extraction tier over raw bytes already in hand.
// It is total: malformed input yields a record with sentinel fields.
func (r *Reporter) ExtractRaw(raw []byte) *email.Record {
	text := string(raw)
	h := r.extractor.Headers(text)

	rec := &email.Record{
		Raw:       text,
		Subject:   sanitize.CleanSubject(h.Subject),
		From:      sanitize.CleanAddress(h.From, sanitize.UnknownSender),
		To:        sanitize.CleanAddress(h.To, sanitize.UnknownRecipient),
		MessageID: h.MessageID,
		UserAgent: h.UserAgent,
		Date:      r.headerDate(h.Date),
	}
	if h.ReplyTo != "" {
		rec.ReplyTo = sanitize.CleanAddress(h.ReplyTo, "")
	}

	for _, att := range r.extractor.Attachments(text) {
		rec.Attachments = append(rec.Attachments, email.Attachment{
			Name: att.Name,
			Type: att.Type,
		})
	}
	return rec
}

// recordFromSummary builds a record from the degraded fallback view.
// Reply-To, Message-ID and User-Agent stay absent; the summary source
// cannot supply them without raw-content parsing, which lives only on the
// primary tier.
func (r *Reporter) recordFromSummary(sum *source.MessageSummary) *email.Record {
	rec := &email.Record{
		Raw:     string(sum.Raw),
		Subject: sanitize.CleanSubject(sum.Subject),
		From:    sanitize.CleanAddress(sum.From, sanitize.UnknownSender),
		To:      sanitize.CleanAddress(sum.To, sanitize.UnknownRecipient),
		Date:    sum.Date,
	}
	if rec.Date.IsZero() {
		rec.Date = r.now()
	}
	for _, att := range sum.Attachments {
		if att.Name == "" {
			continue
		}
		rec.Attachments = append(rec.Attachments, email.Attachment{
			Name: att.Name,
			Type: att.Type,
			Size: att.Size,
		})
	}
	return rec
}

// headerDate parses an RFC 5322 date header, falling back to the current
// time when the header is absent or unparseable.
func (r *Reporter) headerDate(value string) time.Time {
	if value != "" {
		if t, err := mail.ParseDate(value); err == nil {
			return t
		}
	}
	return r.now()
}

// Report runs the full flow for a mailbox message: extract, render, package
// and deliver.
func (r *Reporter) Report(ctx context.Context, id string, kind email.ReportKind, reporterIdentity string) error {
	rec, err := r.Extract(ctx, id)
	if err != nil {
		return err
	}
	return r.Deliver(ctx, rec, kind, reporterIdentity)
}

// ReportRaw runs the full flow over raw bytes already received, e.g. from
// the intake listener or a local file. Rich extraction tier only.
func (r *Reporter) ReportRaw(ctx context.Context, raw []byte, kind email.ReportKind, reporterIdentity string) error {
	return r.Deliver(ctx, r.ExtractRaw(raw), kind, reporterIdentity)
}

// Deliver renders the record and hands the finished payload to the delivery
// channel. Extraction is fully complete before rendering begins.
func (r *Reporter) Deliver(ctx context.Context, rec *email.Record, kind email.ReportKind, reporterIdentity string) error {
	plain, html, err := r.renderer.Render(rec, kind, reporterIdentity)
	if err != nil {
		return err
	}

	prefix := r.cfg.PhishingPrefix
	if kind == email.KindInvestigation {
		prefix = r.cfg.InvestigationPrefix
	}

	rep := &email.Report{
		Recipient: r.cfg.SecurityEmail,
		Subject:   prefix + " " + rec.Subject,
		PlainBody: plain,
		HTMLBody:  html,
		Artifact: email.Artifact{
			Filename:    report.ArtifactFilename(rec.Subject, rec.Date),
			ContentType: artifactContentType,
			Content:     []byte(rec.Raw),
		},
	}

	if err := r.provider.Send(ctx, rep); err != nil {
		slog.Error("report delivery failed",
			"provider", r.provider.Name(),
			"error", err,
		)
		return &DeliveryError{cause: err}
	}

	slog.Info("report delivered",
		"provider", r.provider.Name(),
		"kind", string(kind),
		"reporter", reporterIdentity,
		"attachments", len(rec.Attachments),
	)
	return nil
}
