package model

// DefaultContextWindow is the window assumed for unrecognized models.
const DefaultContextWindow = 4096

// ContextWindows holds the total context size, in tokens, of each family.
var ContextWindows = map[Family]int{
	FamilyGPT4o:       128_000,
	FamilyGPT4oMini:   128_000,
	FamilyGPT4Turbo:   128_000,
	FamilyGPT4:        8_192,
	FamilyGPT35:       16_385,
	FamilyOpus:        200_000,
	FamilySonnet:      200_000,
	FamilyHaiku:       200_000,
	FamilyGeminiPro:   1_000_000,
	FamilyGeminiFlash: 1_000_000,
	FamilyLlama:       128_000,
	FamilyMistral:     32_768,
}

// ContextWindow returns the context size of the named model.
func ContextWindow(name string) int {
	if n, ok := ContextWindows[FamilyOf(name)]; ok {
		return n
	}
	return DefaultContextWindow
}
