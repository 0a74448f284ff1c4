package prompts

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"bpoc/internal/models"
	"bpoc/internal/templating"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultVariant is used when a request does not name one.
const DefaultVariant = "default"

type PromptManager struct {
	prompts map[string]*compiled
}

type compiled struct {
	kind     models.AIContentKind
	variants map[string]string
}

// loaded prompt template
type PromptTemplate struct {
	Kind       string            `yaml:"kind"`
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[string]*compiled)}
	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return pm, nil
}

// BuildPrompt renders the named template variant with vars. Every
// placeholder must be supplied.
func (pm *PromptManager) BuildPrompt(key, variant string, vars map[string]string) (string, error) {
	tpl, exists := pm.prompts[key]
	if !exists {
		return "", fmt.Errorf("template not found: %s", key)
	}
	if variant == "" {
		variant = DefaultVariant
	}
	body, exists := tpl.variants[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for template '%s'", variant, key)
	}

	res := templating.Render(body, vars, templating.Options{})
	if len(res.Missing) > 0 {
		return "", fmt.Errorf("template '%s' is missing values for: %s", key, strings.Join(res.Missing, ", "))
	}
	return res.Output, nil
}

// Kind reports whether the template produces text or an image.
func (pm *PromptManager) Kind(key string) (models.AIContentKind, bool) {
	tpl, ok := pm.prompts[key]
	if !ok {
		return "", false
	}
	return tpl.kind, true
}

// GetTemplates lists template keys in order.
func (pm *PromptManager) GetTemplates() []string {
	keys := make([]string, 0, len(pm.prompts))
	for k := range pm.prompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		kind := models.AIContentKind(promptTemplate.Kind)
		if kind == "" {
			kind = models.AIContentText
		}
		if kind != models.AIContentText && kind != models.AIContentImage {
			return fmt.Errorf("template file %s has unknown kind %q", entry.Name(), promptTemplate.Kind)
		}

		c := &compiled{kind: kind, variants: make(map[string]string)}
		for variant, body := range promptTemplate.Variants {
			var full strings.Builder
			if promptTemplate.BasePrompt != "" {
				full.WriteString(strings.TrimSpace(promptTemplate.BasePrompt))
				full.WriteString("\n\n")
			}
			full.WriteString(strings.TrimSpace(body))
			c.variants[variant] = full.String()
		}
		pm.prompts[strings.TrimSuffix(entry.Name(), ".yaml")] = c
	}

	return nil
}
