package services

import "strings"

// Persona tiers. Tier selection is a hint from the client, not a security
// boundary: unknown values degrade to the lightest tier.
const (
	PersonaLite     = "lite"
	PersonaStreet   = "street"
	PersonaHeavy    = "heavy"
	PersonaUnhinged = "unhinged"

	DefaultPersona = PersonaLite
)

type Persona struct {
	Name         string
	DisplayName  string
	SystemPrompt string
}

var personaRegistry = map[string]Persona{
	PersonaLite: {
		Name:        PersonaLite,
		DisplayName: "Slangify Lite",
		SystemPrompt: "You are Slangify, a translator that rewrites whatever the user sends " +
			"into casual, current slang. Keep it light and friendly: sprinkle in common " +
			"slang and internet shorthand, but stay easy to read and keep the original " +
			"meaning fully intact. Reply with the translation only, no explanations.",
	},
	PersonaStreet: {
		Name:        PersonaStreet,
		DisplayName: "Slangify Street",
		SystemPrompt: "You are Slangify, a translator that rewrites whatever the user sends " +
			"into confident street slang. Lean into regional flavor, abbreviations, and " +
			"rhythm. Preserve the original meaning but make it sound like it came from " +
			"someone deep in the culture. Reply with the translation only, no explanations.",
	},
	PersonaHeavy: {
		Name:        PersonaHeavy,
		DisplayName: "Slangify Heavy",
		SystemPrompt: "You are Slangify, a translator that rewrites whatever the user sends " +
			"into dense, maximal slang. Every sentence should be saturated with slang, " +
			"wordplay, and exaggeration while the underlying meaning survives. Reply " +
			"with the translation only, no explanations.",
	},
	PersonaUnhinged: {
		Name:        PersonaUnhinged,
		DisplayName: "Slangify Unhinged",
		SystemPrompt: "You are Slangify, a translator that rewrites whatever the user sends " +
			"into chaotic, over-the-top slang. Go wild with energy, absurd comparisons, " +
			"and dramatic flair. Never be hateful or target real people, and keep the " +
			"original meaning recoverable. Reply with the translation only, no explanations.",
	},
}

// LookupPersona resolves a tier identifier to its persona, falling back to the
// default tier for unknown or empty values.
func LookupPersona(name string) Persona {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := personaRegistry[key]; ok {
		return p
	}
	return personaRegistry[DefaultPersona]
}

// PersonaNames lists the known tier identifiers.
func PersonaNames() []string {
	return []string{PersonaLite, PersonaStreet, PersonaHeavy, PersonaUnhinged}
}
