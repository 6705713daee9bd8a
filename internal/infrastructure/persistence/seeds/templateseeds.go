package seeds

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kesher-io/kesher/internal/domain/messaging"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

type templateSeed struct {
	Name    string `yaml:"name"`
	Channel string `yaml:"channel"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type templateSeedFile struct {
	Templates []templateSeed `yaml:"templates"`
}

// DefaultTemplates parses the embedded template seed file.
func DefaultTemplates() ([]*messaging.MessageTemplate, error) {
	return parseTemplates(defaultTemplatesYAML)
}

func parseTemplates(data []byte) ([]*messaging.MessageTemplate, error) {
	var file templateSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template seeds: %w", err)
	}

	templates := make([]*messaging.MessageTemplate, 0, len(file.Templates))
	for _, s := range file.Templates {
		t, err := messaging.NewMessageTemplate(s.Name, messaging.Channel(s.Channel), s.Subject, s.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid seed template %q: %w", s.Name, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// SeedMessageTemplates creates the default templates that do not exist yet.
// Templates already present, including edited ones, are left alone.
func SeedMessageTemplates(ctx context.Context, repo messaging.TemplateRepository) (int, error) {
	templates, err := DefaultTemplates()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range templates {
		existing, err := repo.GetByName(ctx, t.Name())
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := repo.Create(ctx, t); err != nil {
			return created, fmt.Errorf("failed to seed template %s: %w", t.Name(), err)
		}
		created++
	}
	return created, nil
}
