// Package sanitize enforces the output safety invariants on composed
// responses: no diagnostic claims, no treatment recommendations, no
// prognosis assurances, no dismissive language, a complete disclaimer and
// the mandatory emergency contacts. Violations are corrected
// deterministically in a single bounded pass; the sanitizer never fails.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/compose"
)

// Class identifies one of the four banned-phrase classes.
type Class string

const (
	ClassDiagnosis  Class = "diagnostic_claim"
	ClassTreatment  Class = "treatment_recommendation"
	ClassPrognosis  Class = "prognosis_assurance"
	ClassDismissive Class = "dismissive_language"
)

// Warning codes. Each correction the sanitizer applies is recorded as one
// warning; warnings are surfaced to monitoring but never block a response.
const (
	WarnPhraseSubstituted  = "phrase_substituted"
	WarnAdviceReplaced     = "advice_replaced"
	WarnStepReplaced       = "step_replaced"
	WarnDisclaimerReplaced = "disclaimer_replaced"
	WarnContactsInjected   = "contacts_injected"
)

// Warning records one correction.
type Warning struct {
	Code  string `json:"code"`
	Class Class  `json:"class,omitempty"`
	Field string `json:"field,omitempty"`
}

// FallbackAdvice replaces advice text that triggered a banned-phrase class
// with no substitution table entry.
const FallbackAdvice = "無法提供進一步說明。請依症狀嚴重程度諮詢專業醫師或就近醫療機構；若情況危急，請立即撥打119。"

const fallbackStep = "請諮詢醫療專業人員以取得正確指引"

// fallbackDisclaimer is the canonical disclaimer the sanitizer installs when
// a composed disclaimer is missing any required clause. It is deliberately
// independent of the composer's template.
const fallbackDisclaimer = "本訊息由症狀分級系統產生，僅供參考，不提供醫療診斷；請諮詢專業醫師確認病情。如情況危急，請立即撥打119。"

type substitution struct {
	class       Class
	phrase      string
	replacement string
}

// Each banned phrase maps to exactly one safe replacement. Replacements must
// not themselves match any class pattern; TestSubstitutionsAreSafe holds the
// table to that.
var substitutions = []substitution{
	{ClassDiagnosis, "您得了", "您的症狀可能與多種原因有關，"},
	{ClassDiagnosis, "您罹患", "您的症狀可能與多種原因有關，"},
	{ClassDiagnosis, "診斷為", "症狀表現類似"},
	{ClassDiagnosis, "確定是", "可能與下列情況有關："},
	{ClassTreatment, "請服用", "藥物相關問題請諮詢醫師，"},
	{ClassTreatment, "建議用藥", "藥物相關問題請諮詢醫師"},
	{ClassTreatment, "吃藥就好", "請由醫師評估後續處置"},
	{ClassPrognosis, "一定會好", "多數情況可逐步改善，仍請留意變化"},
	{ClassPrognosis, "不會有事", "請持續觀察症狀變化"},
	{ClassDismissive, "不用擔心", "請留意症狀變化"},
	{ClassDismissive, "沒什麼大不了", "仍建議持續觀察"},
}

type classPattern struct {
	class Class
	re    *regexp.Regexp
}

// Class patterns are broader than the substitution table: they catch banned
// phrasing the table has no entry for, which forces the generic fallback.
var classPatterns = []classPattern{
	{ClassDiagnosis, regexp.MustCompile(`(您|你)(得了|罹患)|確診為|診斷為|確定是`)},
	{ClassTreatment, regexp.MustCompile(`服用|吃藥|用藥|處方|劑量`)},
	{ClassPrognosis, regexp.MustCompile(`一定會好|保證(痊癒|康復)|不會有事|絕對(沒事|安全)`)},
	{ClassDismissive, regexp.MustCompile(`不用擔心|不必擔心|沒什麼大不了|只是小(問題|毛病)|不需要就醫`)},
}

// Sanitize applies the full validation pass to a composed payload and
// returns the corrected payload with one warning per correction. It runs
// exactly once per classification; it is not a retry loop against the
// composer.
func Sanitize(p compose.Payload) (compose.Payload, []Warning) {
	var warnings []Warning

	advice, w := sanitizeText(p.Advice, "advice")
	if hasFallback(w) {
		advice = FallbackAdvice
	}
	p.Advice = advice
	warnings = append(warnings, w...)

	steps := append([]string(nil), p.NextSteps...)
	p.NextSteps = steps
	for i, step := range steps {
		clean, w := sanitizeText(step, "next_steps")
		if hasFallback(w) {
			clean = fallbackStep
			for j := range w {
				if w[j].Code == WarnAdviceReplaced {
					w[j].Code = WarnStepReplaced
				}
			}
		}
		steps[i] = clean
		warnings = append(warnings, w...)
	}

	if !disclaimerComplete(p.Disclaimer) {
		p.Disclaimer = fallbackDisclaimer
		warnings = append(warnings, Warning{Code: WarnDisclaimerReplaced, Field: "disclaimer"})
	}

	if fixed, ok := enforceContacts(p.Level, p.EmergencyContacts); ok {
		p.EmergencyContacts = fixed
		warnings = append(warnings, Warning{Code: WarnContactsInjected, Field: "emergency_contacts"})
	}

	return p, warnings
}

// sanitizeText substitutes known banned phrases and reports whether any
// class pattern still matches afterwards (which demands the fallback).
func sanitizeText(text, field string) (string, []Warning) {
	var warnings []Warning
	out := text
	for _, sub := range substitutions {
		if !strings.Contains(out, sub.phrase) {
			continue
		}
		out = strings.ReplaceAll(out, sub.phrase, sub.replacement)
		warnings = append(warnings, Warning{Code: WarnPhraseSubstituted, Class: sub.class, Field: field})
	}
	for _, cp := range classPatterns {
		if cp.re.MatchString(out) {
			warnings = append(warnings, Warning{Code: WarnAdviceReplaced, Class: cp.class, Field: field})
			return out, warnings
		}
	}
	return out, warnings
}

func hasFallback(warnings []Warning) bool {
	for _, w := range warnings {
		if w.Code == WarnAdviceReplaced || w.Code == WarnStepReplaced {
			return true
		}
	}
	return false
}

// The disclaimer must reference its limited scope, refer the user to a
// professional, and name the emergency number.
var disclaimerClauses = []string{"僅供參考", "專業醫", "119"}

func disclaimerComplete(disclaimer string) bool {
	if disclaimer == "" {
		return false
	}
	for _, clause := range disclaimerClauses {
		if !strings.Contains(disclaimer, clause) {
			return false
		}
	}
	return true
}

// enforceContacts injects the default contact set when a critical or high
// payload is missing "119". The second return reports whether a correction
// was applied.
func enforceContacts(level catalog.Level, contacts []string) ([]string, bool) {
	if level != catalog.LevelCritical && level != catalog.LevelHigh {
		return contacts, false
	}
	for _, c := range contacts {
		if c == "119" {
			return contacts, false
		}
	}
	if level == catalog.LevelCritical {
		return []string{"119", "112"}, true
	}
	return []string{"119"}, true
}
