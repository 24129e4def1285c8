package model

import (
	"slices"
	"strings"
)

// Family is a normalized model family name.
type Family string

// OpenAI families.
const (
	FamilyGPT4o     Family = "gpt-4o"
	FamilyGPT4oMini Family = "gpt-4o-mini"
	FamilyGPT4Turbo Family = "gpt-4-turbo"
	FamilyGPT4      Family = "gpt-4"
	FamilyGPT35     Family = "gpt-3.5-turbo"
)

// Anthropic families.
const (
	FamilyOpus   Family = "claude-opus"
	FamilySonnet Family = "claude-sonnet"
	FamilyHaiku  Family = "claude-haiku"
)

// Google families.
const (
	FamilyGeminiPro   Family = "gemini-pro"
	FamilyGeminiFlash Family = "gemini-flash"
)

// Local families served through Ollama.
const (
	FamilyLlama   Family = "llama"
	FamilyMistral Family = "mistral"
)

var families = []Family{
	FamilyGPT4o, FamilyGPT4oMini, FamilyGPT4Turbo, FamilyGPT4, FamilyGPT35,
	FamilyOpus, FamilySonnet, FamilyHaiku,
	FamilyGeminiPro, FamilyGeminiFlash,
	FamilyLlama, FamilyMistral,
}

// FamilyOf maps a vendor model identifier to its family. For example
// "gpt-4o-2024-08-06" becomes gpt-4o and "claude-3-5-haiku-latest" becomes
// claude-haiku. Names matching no known pattern come back unchanged.
func FamilyOf(name string) Family {
	lower := strings.ToLower(strings.TrimSpace(name))
	if f := Family(lower); slices.Contains(families, f) {
		return f
	}

	// Order matters: gpt-4o-mini before gpt-4o before gpt-4.
	switch {
	case strings.HasPrefix(lower, "gpt-4o-mini"):
		return FamilyGPT4oMini
	case strings.HasPrefix(lower, "gpt-4o"), strings.HasPrefix(lower, "chatgpt-4o"):
		return FamilyGPT4o
	case strings.HasPrefix(lower, "gpt-4-turbo"), strings.HasPrefix(lower, "gpt-4-1106"), strings.HasPrefix(lower, "gpt-4-0125"):
		return FamilyGPT4Turbo
	case strings.HasPrefix(lower, "gpt-4"):
		return FamilyGPT4
	case strings.HasPrefix(lower, "gpt-3.5-turbo"):
		return FamilyGPT35
	}

	if strings.Contains(lower, "claude") || isClaudeAlias(lower) {
		switch {
		case strings.Contains(lower, "opus"):
			return FamilyOpus
		case strings.Contains(lower, "haiku"):
			return FamilyHaiku
		case strings.Contains(lower, "sonnet"):
			return FamilySonnet
		}
	}

	if strings.HasPrefix(lower, "gemini") {
		if strings.Contains(lower, "flash") {
			return FamilyGeminiFlash
		}
		return FamilyGeminiPro
	}

	// Ollama tags look like "llama3.2:3b".
	switch {
	case strings.HasPrefix(lower, "llama"):
		return FamilyLlama
	case strings.HasPrefix(lower, "mistral"), strings.HasPrefix(lower, "mixtral"):
		return FamilyMistral
	}

	return Family(name)
}

func isClaudeAlias(lower string) bool {
	return lower == "opus" || lower == "sonnet" || lower == "haiku"
}

// Known reports whether f is one of the package's families.
func (f Family) Known() bool {
	return slices.Contains(families, f)
}
