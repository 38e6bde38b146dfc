package llm

import "testing"

func TestTypeFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		fallback Type
		want     Type
	}{
		{"unset uses fallback", "", TypeOpenAI, TypeOpenAI},
		{"unset no fallback defaults ollama", "", "", TypeOllama},
		{"explicit ollama", "ollama", TypeOpenAI, TypeOllama},
		{"explicit openai", "openai", TypeOllama, TypeOpenAI},
		{"garbage defaults ollama", "not-a-backend", TypeOpenAI, TypeOllama},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvType, tt.env)
			if got := TypeFromEnv(tt.fallback); got != tt.want {
				t.Errorf("TypeFromEnv(%q) = %q, want %q", tt.fallback, got, tt.want)
			}
		})
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	svc, err := New(TypeOllama, FactoryConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if svc.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", svc.Name())
	}

	svc, err = New(TypeOpenAI, FactoryConfig{OpenAI: OpenAIConfig{APIKey: "sk-test"}})
	if err != nil {
		t.Fatal(err)
	}
	if svc.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", svc.Name())
	}
}

func TestNew_OpenAIRequiresKey(t *testing.T) {
	if _, err := New(TypeOpenAI, FactoryConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
