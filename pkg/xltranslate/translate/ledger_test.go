package translate

import (
	"strings"
	"testing"
)

func TestLedgerCost(t *testing.T) {
	l := NewLedger(Pricing{InputPerMillion: 1.75, OutputPerMillion: 14.00})
	l.Add(600_000, 200_000)
	l.Add(400_000, 300_000)

	u := l.Usage()
	if u.PromptTokens != 1_000_000 || u.CompletionTokens != 500_000 {
		t.Fatalf("Usage() = %+v", u)
	}
	// 1.75 + 7.00
	if !almostEqual(l.Cost(), 8.75, 1e-9) {
		t.Errorf("Cost() = %f, expected 8.75", l.Cost())
	}
}

func TestLedgerIgnoresNegative(t *testing.T) {
	l := NewLedger(DefaultPricing())
	l.Add(10, 10)
	l.Add(-5, -5)

	if u := l.Usage(); u.PromptTokens != 10 || u.CompletionTokens != 10 {
		t.Errorf("Usage() = %+v, expected totals to never decrease", u)
	}
}

func TestCacheMissing(t *testing.T) {
	c := NewCache()
	c.Record("a", "A")

	got := c.Missing([]string{"b", "a", "", "c", "b"})
	if strings.Join(got, ",") != "b,c" {
		t.Errorf("Missing() = %v, expected [b c]", got)
	}

	c.Record("a", "AA")
	if v, _ := c.Lookup("a"); v != "AA" {
		t.Errorf("Lookup(a) = %q, expected last write to win", v)
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("German", "French", "")
	for _, want := range []string{"from German into French", "Keep every JSON key unchanged", "Translate only the values", "ONLY a valid JSON object"} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	custom := SystemPrompt("", "", "## Role\nYou localize game reports.")
	if !strings.Contains(custom, "You localize game reports.") || strings.Contains(custom, DefaultGuidelines) {
		t.Error("custom guidelines must replace the default ones")
	}
	if !strings.Contains(custom, "STRICT RULES (TECHNICAL)") {
		t.Error("technical rules must always be present")
	}
}
