package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/justsurfingit/lead-labeler/internal/predict"
)

const defaultLeadPrompt = `You triage freelance job leads for a software agency.
Decide whether the agency would apply to this lead or reject it.

### LEAD:
Category: %s
Client country: %s
Fixed budget (USD): %s
Hourly range (USD): %s

### OUTPUT:
Answer with exactly one word: APPLIED or REJECTED.
`

// LLMClassifier asks a language model to label the lead. The feature vector
// is decoded back into names so the model sees what a human would.
type LLMClassifier struct {
	Model llms.Model
	// Prompt overrides the default template. It receives category, country,
	// budget and hourly range as four %s verbs.
	Prompt string
}

func (c *LLMClassifier) Predict(ctx context.Context, v predict.FeatureVector) (int, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, c.Model, c.prompt(v), llms.WithTemperature(0))
	if err != nil {
		return 0, fmt.Errorf("llm classify: %w", err)
	}
	return parseAnswer(resp)
}

func (c *LLMClassifier) prompt(v predict.FeatureVector) string {
	tmpl := c.Prompt
	if tmpl == "" {
		tmpl = defaultLeadPrompt
	}

	category, ok := predict.CategoryName(int(v[predict.FeatureCategory]))
	if !ok {
		category = "unknown"
	}
	country, ok := predict.CountryName(int(v[predict.FeatureCountry]))
	if !ok {
		country = "unknown"
	}
	budget := "not stated"
	if v[predict.FeatureBudget] > 0 {
		budget = fmt.Sprintf("%.2f", v[predict.FeatureBudget])
	}
	hourly := "not stated"
	if v[predict.FeatureHourlyFrom] > 0 || v[predict.FeatureHourlyTo] > 0 {
		hourly = fmt.Sprintf("%.2f-%.2f", v[predict.FeatureHourlyFrom], v[predict.FeatureHourlyTo])
	}
	return fmt.Sprintf(tmpl, category, country, budget, hourly)
}

// validatePrompt rejects a custom template that does not take exactly the
// four %s values prompt fills in.
func validatePrompt(tmpl string) error {
	if tmpl == "" {
		return nil
	}
	if out := fmt.Sprintf(tmpl, "", "", "", ""); strings.Contains(out, "%!") {
		return fmt.Errorf("%w: llm prompt must take exactly four %%s values (category, country, budget, hourly range)", ErrInvalidArtifact)
	}
	return nil
}

func parseAnswer(resp string) (int, error) {
	answer := strings.ToUpper(resp)
	applied := strings.Contains(answer, "APPLIED")
	rejected := strings.Contains(answer, "REJECTED")
	switch {
	case applied && !rejected:
		return predict.ClassApplied, nil
	case rejected && !applied:
		return predict.ClassRejected, nil
	default:
		return 0, fmt.Errorf("llm classify: ambiguous answer %q", strings.TrimSpace(resp))
	}
}
