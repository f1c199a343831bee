package query

import (
	"regexp"
	"testing"
)

func TestClassifyTemporal(t *testing.T) {
	if got := Classify("what time did I open the terminal yesterday"); got != IntentTemporal {
		t.Fatalf("expected temporal, got %s", got)
	}
}

func TestClassifyFocus(t *testing.T) {
	if got := Classify("what was I looking at an hour ago"); got != IntentFocus {
		t.Fatalf("expected focus, got %s", got)
	}
}

func TestClassifyCounting(t *testing.T) {
	if got := Classify("how many times did I open slack today"); got != IntentCounting {
		t.Fatalf("expected counting, got %s", got)
	}
}

func TestClassifyCrossWindow(t *testing.T) {
	if got := Classify("did I switch between the browser and the editor"); got != IntentCrossWindow {
		t.Fatalf("expected cross_window, got %s", got)
	}
}

func TestClassifyUnknownFallsThrough(t *testing.T) {
	if got := Classify("xyzzy plugh"); got != IntentUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	rules := []IntentRule{
		{Pattern: regexp.MustCompile("foo"), Category: IntentTemporal},
		{Pattern: regexp.MustCompile("foo"), Category: IntentFocus},
	}
	if got := ClassifyWithRules("foo bar", rules); got != IntentTemporal {
		t.Fatalf("expected first matching rule to win, got %s", got)
	}
}

func TestRequiredRecordTypesUnknownIsEmpty(t *testing.T) {
	if got := RequiredRecordTypes(IntentUnknown); got != nil {
		t.Fatalf("expected nil record types for unknown intent, got %v", got)
	}
}
