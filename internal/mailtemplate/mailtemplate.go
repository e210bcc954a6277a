// Package mailtemplate renders notification kinds into deliverable mail
// bodies. Templates are embedded at build time and parsed once at startup;
// a kind with no registered template is a deployment defect, not a runtime
// data condition.
package mailtemplate

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

//go:embed templates/*.html
var templatesFS embed.FS

// kindTemplate binds a notification kind to its subject line and template file.
type kindTemplate struct {
	subject string
	name    string
}

// registry is the static kind → template mapping. Each kind maps to exactly
// one template; the mapping is fixed at process start.
var registry = map[model.NotificationKind]kindTemplate{
	model.KindPartnerWelcome: {
		subject: "Bienvenue sur Vitrine",
		name:    "partner_welcome.html",
	},
	model.KindPartnerApproved: {
		subject: "Votre compte partenaire est approuvé",
		name:    "partner_approved.html",
	},
	model.KindPartnerRejected: {
		subject: "Votre candidature partenaire",
		name:    "partner_rejected.html",
	},
}

// Engine renders registered notification templates. Rendering is a pure
// function of (kind, context); the same inputs always produce the same
// output document.
type Engine struct {
	t      *template.Template
	logger *slog.Logger
}

// EngineConfig holds configuration for creating an Engine.
type EngineConfig struct {
	Logger *slog.Logger
}

// NewEngine parses the embedded templates and validates that every
// registered kind has a matching template definition.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	for kind, kt := range registry {
		if t.Lookup(kt.name) == nil {
			return nil, fmt.Errorf("kind %q has no template %q", kind, kt.name)
		}
	}

	return &Engine{t: t, logger: logger.With("component", "mailtemplate")}, nil
}

// Render produces the subject and HTML body for a notification kind.
// Unknown kinds fail loudly with a TemplateNotFound error rather than
// rendering a blank message.
func (e *Engine) Render(
	kind model.NotificationKind,
	context model.NotificationContext,
) (*core.RenderedMessage, error) {
	kt, ok := registry[kind]
	if !ok {
		return nil, apperrors.TemplateNotFoundf("no template registered for kind %q", kind)
	}

	var buf bytes.Buffer
	if err := e.t.ExecuteTemplate(&buf, kt.name, context); err != nil {
		e.logger.Error("template execution failed",
			slog.String("template", kt.name),
			slog.Any("error", err),
		)
		return nil, apperrors.TemplateNotFoundf("render template %q: %v", kt.name, err)
	}

	return &core.RenderedMessage{
		Subject: kt.subject,
		HTML:    buf.String(),
	}, nil
}

var _ core.TemplateRenderer = (*Engine)(nil)
