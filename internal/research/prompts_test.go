package research

import (
	"strings"
	"testing"

	"portfolio-sentinel/internal/models"
)

func TestGeneratePrompts(t *testing.T) {
	alerts := []models.Alert{
		{Severity: models.SeverityCritical, Category: models.CategoryITMAssignment, Symbol: "NVDA", Message: "Short CALL $200.00 is ITM"},
		{Severity: models.SeverityWarning, Category: models.CategoryHighDelta, Symbol: "NVDA", Message: "High delta 0.65"},
		{Severity: models.SeverityWarning, Category: models.CategoryLargeLoss, Symbol: "MMM", Message: "MMM down 15.0%"},
	}

	got := GeneratePrompts(alerts)
	if len(got) != 3 {
		t.Fatalf("prompts = %d, want 3", len(got))
	}

	// First-occurrence order is preserved.
	wantTopics := []string{"assignment_risk", "delta_risk", "thesis_review"}
	for i, topic := range wantTopics {
		if got[i].Topic != topic {
			t.Errorf("prompt %d topic = %q, want %q", i, got[i].Topic, topic)
		}
	}

	if got[0].Priority != models.SeverityCritical {
		t.Errorf("priority = %s, want CRITICAL", got[0].Priority)
	}
	if !strings.Contains(got[0].Prompt, "NVDA") {
		t.Errorf("prompt body missing symbol: %q", got[0].Prompt)
	}
	if got[0].Context != alerts[0].Message {
		t.Errorf("context = %q, want alert message", got[0].Context)
	}
}

func TestGeneratePromptsDedupe(t *testing.T) {
	alerts := []models.Alert{
		{Severity: models.SeverityWarning, Category: models.CategoryHighDelta, Symbol: "NVDA", Message: "first"},
		{Severity: models.SeverityCritical, Category: models.CategoryHighDelta, Symbol: "NVDA", Message: "second, more severe"},
		{Severity: models.SeverityWarning, Category: models.CategoryHighDelta, Symbol: "AAPL", Message: "different symbol"},
	}

	got := GeneratePrompts(alerts)
	if len(got) != 2 {
		t.Fatalf("prompts = %d, want 2", len(got))
	}

	// Duplicate pair collapses to the highest severity, keeping first-seen order.
	if got[0].Symbol != "NVDA" || got[0].Priority != models.SeverityCritical {
		t.Errorf("dedupe kept %s/%s, want NVDA/CRITICAL", got[0].Symbol, got[0].Priority)
	}
	if got[0].Context != "second, more severe" {
		t.Errorf("context = %q, want the severe occurrence", got[0].Context)
	}
	if got[1].Symbol != "AAPL" {
		t.Errorf("second prompt symbol = %q, want AAPL", got[1].Symbol)
	}
}

func TestGeneratePromptsSkipsBookkeeping(t *testing.T) {
	alerts := []models.Alert{
		{Severity: models.SeverityInfo, Category: models.CategorySkippedRows, Message: "1 row skipped", Metric: 1},
	}
	if got := GeneratePrompts(alerts); len(got) != 0 {
		t.Errorf("bookkeeping alerts should not produce prompts, got %v", got)
	}
}

func TestGeneratePromptsEmpty(t *testing.T) {
	if got := GeneratePrompts(nil); len(got) != 0 {
		t.Errorf("prompts from nil alerts = %v, want none", got)
	}
}
