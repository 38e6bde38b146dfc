package llm

import "os"

// Type identifies a completion backend.
type Type string

const (
	TypeOllama Type = "ollama"
	TypeOpenAI Type = "openai"
)

// EnvType is the environment variable selecting the backend.
const EnvType = "LLM_TYPE"

// TypeFromEnv reads LLM_TYPE, falling back to the given default, then to
// ollama. Unrecognized values also fall back to ollama so a bad env never
// breaks startup.
func TypeFromEnv(fallback Type) Type {
	t := Type(os.Getenv(EnvType))
	if t == "" {
		t = fallback
	}
	switch t {
	case TypeOllama, TypeOpenAI:
		return t
	}
	return TypeOllama
}

// FactoryConfig carries per-backend settings for New.
type FactoryConfig struct {
	Ollama OllamaConfig
	OpenAI OpenAIConfig
}

// New constructs the Service for the selected backend.
func New(t Type, cfg FactoryConfig) (Service, error) {
	if t == TypeOpenAI {
		return NewOpenAI(cfg.OpenAI)
	}
	return NewOllama(cfg.Ollama), nil
}
