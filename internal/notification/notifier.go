package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateInvitation = "invitation"
	TemplateRejection  = "rejection"
)

var subjects = map[string]string{
	TemplateInvitation: "Sua intenção de participação foi aprovada",
	TemplateRejection:  "Atualização sobre sua intenção de participação",
}

type InvitationNotice struct {
	Name       string
	Email      string
	InviteLink string
}

type RejectionNotice struct {
	Name   string
	Email  string
	Reason string
}

// Notifier sends the notices emitted by intention decisions.
type Notifier interface {
	SendInvitation(ctx context.Context, notice InvitationNotice) error
	SendRejection(ctx context.Context, notice RejectionNotice) error
}

type templateNotifier struct {
	provider  Provider
	templates *template.Template
}

func NewNotifier(provider Provider) (Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	return &templateNotifier{provider: provider, templates: tmpl}, nil
}

func (n *templateNotifier) SendInvitation(ctx context.Context, notice InvitationNotice) error {
	return n.send(ctx, notice.Email, TemplateInvitation, notice)
}

func (n *templateNotifier) SendRejection(ctx context.Context, notice RejectionNotice) error {
	return n.send(ctx, notice.Email, TemplateRejection, notice)
}

func (n *templateNotifier) send(ctx context.Context, to string, name string, data any) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("notification %s: empty recipient", name)
	}
	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return n.provider.Send(ctx, []string{to}, subjects[name], body.String())
}
