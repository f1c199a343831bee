package query

import "regexp"

// IntentRule is one entry in the ordered classification table: the first
// rule whose Pattern matches wins. Grounded on the teacher's
// pkg/policy/engine/matcher.go declarative condition-matching idiom
// (ordered rules, first applicable wins, fail-safe default), generalized
// from the teacher's AST-walked boolean conditions to a flat regex table
// since query intent classification needs no nested boolean logic.
type IntentRule struct {
	Pattern  *regexp.Regexp
	Category Intent
}

// DefaultRules is the closed classification table spec.md §4.8 calls for:
// focus, counting, cross-window, then temporal, falling through to unknown.
// The temporal rule comes last because its cue words ("ago", "between")
// also occur in focus and cross-window questions.
var DefaultRules = []IntentRule{
	{Pattern: regexp.MustCompile(`(?i)\b(focused|active window|what (was|is) I (looking|working) (at|on))\b`), Category: IntentFocus},
	{Pattern: regexp.MustCompile(`(?i)\b(how many times|how often|count)\b`), Category: IntentCounting},
	{Pattern: regexp.MustCompile(`(?i)\b(across|compare|switch(ed|ing)? between|multiple windows)\b`), Category: IntentCrossWindow},
	{Pattern: regexp.MustCompile(`(?i)\b(when|what time|yesterday|last (week|hour|night)|ago|between)\b`), Category: IntentTemporal},
}

// Classify applies DefaultRules in order, returning IntentUnknown if none
// match — callers route IntentUnknown to NEEDS_CLARIFICATION (spec.md §4.8).
func Classify(queryText string) Intent {
	return ClassifyWithRules(queryText, DefaultRules)
}

// ClassifyWithRules applies rules in order for testability and future
// per-deployment customization.
func ClassifyWithRules(queryText string, rules []IntentRule) Intent {
	for _, rule := range rules {
		if rule.Pattern.MatchString(queryText) {
			return rule.Category
		}
	}
	return IntentUnknown
}

// RequiredRecordTypes routes an Intent to the normalized record kinds it may
// read — no raw media, no extraction request, per spec.md §4.8 step 2.
func RequiredRecordTypes(intent Intent) []string {
	switch intent {
	case IntentTemporal:
		return []string{"evidence.capture.frame", "derived.text.ocr", "derived.text.vlm"}
	case IntentFocus:
		return []string{"obs.uia.focus", "derived.text.ocr"}
	case IntentCounting:
		return []string{"derived.text.ocr", "derived.text.vlm", "derived.sst.text.extra"}
	case IntentCrossWindow:
		return []string{"obs.uia.context", "derived.text.ocr"}
	default:
		return nil
	}
}
