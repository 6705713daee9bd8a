package messaging

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

var templateNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,99}$`)

// MessageTemplate holds a subject and body written with {{.FirstName}}-style placeholders.
type MessageTemplate struct {
	id        uint
	name      string
	channel   Channel
	subject   string
	body      string
	createdAt time.Time
	updatedAt time.Time
}

func NewMessageTemplate(name string, channel Channel, subject, body string) (*MessageTemplate, error) {
	t := &MessageTemplate{}
	if err := t.apply(name, channel, subject, body); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	t.createdAt = now
	t.updatedAt = now
	return t, nil
}

func (t *MessageTemplate) apply(name string, channel Channel, subject, body string) error {
	name = strings.TrimSpace(name)
	if !templateNameRegex.MatchString(name) {
		return fmt.Errorf("template name must be lowercase letters, digits, '_' or '-'")
	}
	if !channel.IsValid() {
		return fmt.Errorf("invalid channel: %s", channel)
	}
	if channel == ChannelEmail && strings.TrimSpace(subject) == "" {
		return fmt.Errorf("email templates need a subject")
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("template body is required")
	}
	if len(body) > 20000 {
		return fmt.Errorf("template body exceeds maximum length of 20000 characters")
	}
	if _, err := parse("subject", subject); err != nil {
		return err
	}
	if _, err := parse("body", body); err != nil {
		return err
	}
	t.name = name
	t.channel = channel
	t.subject = subject
	t.body = body
	return nil
}

func (t *MessageTemplate) Update(name string, channel Channel, subject, body string) error {
	if err := t.apply(name, channel, subject, body); err != nil {
		return err
	}
	t.updatedAt = biztime.NowUTC()
	return nil
}

func parse(part, text string) (*template.Template, error) {
	tmpl, err := template.New(part).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", part, err)
	}
	return tmpl, nil
}

// Render fills the placeholders. Keys missing from vars render as empty strings.
func (t *MessageTemplate) Render(vars map[string]string) (subject, body string, err error) {
	if vars == nil {
		vars = map[string]string{}
	}
	if subject, err = execute("subject", t.subject, vars); err != nil {
		return "", "", err
	}
	if body, err = execute("body", t.body, vars); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func execute(part, text string, vars map[string]string) (string, error) {
	tmpl, err := parse(part, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", part, err)
	}
	return buf.String(), nil
}

func (t *MessageTemplate) ID() uint             { return t.id }
func (t *MessageTemplate) Name() string         { return t.name }
func (t *MessageTemplate) Channel() Channel     { return t.channel }
func (t *MessageTemplate) Subject() string      { return t.subject }
func (t *MessageTemplate) Body() string         { return t.body }
func (t *MessageTemplate) CreatedAt() time.Time { return t.createdAt }
func (t *MessageTemplate) UpdatedAt() time.Time { return t.updatedAt }

func (t *MessageTemplate) SetID(id uint) { t.id = id }

func ReconstructMessageTemplate(id uint, name string, channel Channel, subject, body string, createdAt, updatedAt time.Time) *MessageTemplate {
	return &MessageTemplate{
		id:        id,
		name:      name,
		channel:   channel,
		subject:   subject,
		body:      body,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}
