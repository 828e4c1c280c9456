package validator

import (
	"os"
	"path/filepath"
	"strings"
)

/*
Responsibilities

- Decide whether fetched bytes are a real document
- Name the reason when they are not

Checks run in a fixed order and the first failing check decides the reason:
size, detected type vs declared extension, binary formats, junk indicator
families, visible text length. The validator performs no I/O besides
ValidateFile reading its argument, and holds no clock or network state, so
the same input always yields the same Outcome.
*/

type Validator struct {
	rules Rules
}

func New(rules Rules) *Validator {
	return &Validator{rules: rules}
}

var defaultValidator = New(DefaultRules())

// Validate runs the default rule set.
func Validate(content []byte, declaredExt string) Outcome {
	return defaultValidator.Validate(content, declaredExt)
}

// ValidateFile runs the default rule set against a stored file.
func ValidateFile(path string) Outcome {
	return defaultValidator.ValidateFile(path)
}

func (v *Validator) Rules() Rules {
	return v.rules
}

func (v *Validator) ValidateFile(path string) Outcome {
	content, err := os.ReadFile(path)
	if err != nil {
		return reject(ReasonNotFound, Details{DeclaredType: normalizeExt(filepath.Ext(path))})
	}
	return v.Validate(content, filepath.Ext(path))
}

func (v *Validator) Validate(content []byte, declaredExt string) Outcome {
	size := int64(len(content))
	declared := normalizeExt(declaredExt)

	if size == 0 {
		return reject(ReasonEmpty, Details{SizeBytes: 0, DeclaredType: declared})
	}
	if size < int64(v.rules.MinSizeBytes) {
		return reject(ReasonTooSmall, Details{SizeBytes: size, DeclaredType: declared})
	}

	actual := DetectType(content)
	details := Details{ActualType: actual, SizeBytes: size, DeclaredType: declared}

	if _, isDocument := v.rules.DocumentExtensions[declared]; isDocument && actual == TypeHTML {
		return reject(ReasonTypeMismatch, details)
	}

	if actual.IsBinaryDocument() {
		if actual == TypePDF {
			details.PageCount = pdfPageCount(content)
		}
		return accept(details)
	}

	if !actual.IsMarkup() {
		if size > int64(v.rules.UnknownBinaryFloor) {
			return accept(details)
		}
		return reject(ReasonTooSmall, details)
	}

	lowered := strings.ToLower(string(content))
	visible := VisibleText(content)
	details.VisibleChars = len([]rune(visible))

	for _, family := range v.rules.Families {
		matched := matchPhrases(lowered, family.Phrases)
		if len(matched) == 0 {
			continue
		}
		if family.MaxVisibleChars > 0 && details.VisibleChars >= family.MaxVisibleChars {
			continue
		}
		details.MatchedIndicators = matched
		return reject(family.Reason, details)
	}

	if details.VisibleChars < v.rules.MinTextChars {
		for _, pattern := range v.rules.ShellPatterns {
			if pattern.Match(content) {
				return reject(ReasonEmptyShell, details)
			}
		}
		return reject(ReasonInsufficientText, details)
	}

	return accept(details)
}

func matchPhrases(lowered string, phrases []string) []string {
	var matched []string
	for _, phrase := range phrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			matched = append(matched, phrase)
		}
	}
	return matched
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
