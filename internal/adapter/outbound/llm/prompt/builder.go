package prompt

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Builder renders classifier prompts from embedded templates.
type Builder struct {
	templates *template.Template
}

func NewBuilder() (*Builder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Builder{templates: tmpl}, nil
}

// IntentInput holds data for the intent classification template.
type IntentInput struct {
	Actions []ActionInput
	Message string
}

// ActionInput describes one action the classifier may choose.
type ActionInput struct {
	Name        string
	Description string
}

// BuildIntentPrompt renders the intent template with the given input.
func (b *Builder) BuildIntentPrompt(input IntentInput) (string, error) {
	var buf bytes.Buffer
	if err := b.templates.ExecuteTemplate(&buf, "intent.tmpl", input); err != nil {
		return "", err
	}
	return buf.String(), nil
}
