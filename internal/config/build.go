package config

import (
	"context"
	"fmt"

	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/internal/llm"
)

// BuildLLM constructs the completion backend named by the config.
func (c Config) BuildLLM() (llm.Service, error) {
	return llm.New(llm.Type(c.LLM.Type), llm.FactoryConfig{
		Ollama: llm.OllamaConfig{BaseURL: c.LLM.BaseURL, Model: c.LLM.Model},
		OpenAI: llm.OpenAIConfig{BaseURL: c.LLM.BaseURL, APIKey: c.LLM.APIKey, Model: c.LLM.Model},
	})
}

// BuildEmbedder constructs the configured vectorizer.
func (c Config) BuildEmbedder() (embed.Embedder, error) {
	switch c.Embedder.Type {
	case EmbedderHashing:
		return embed.NewHashing(c.Embedder.Dimension), nil
	case EmbedderOllama:
		return embed.NewOllama(embed.OllamaConfig{
			BaseURL: c.Embedder.BaseURL,
			Model:   c.Embedder.Model,
		}), nil
	case EmbedderOpenAI:
		return embed.NewOpenAI(embed.OpenAIConfig{
			BaseURL: c.Embedder.BaseURL,
			APIKey:  c.Embedder.APIKey,
			Model:   c.Embedder.Model,
		})
	}
	return nil, fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
}

// BuildIndex constructs the configured vector store. The postgres index
// connects and ensures its schema during construction; Close it when done.
func (c Config) BuildIndex(ctx context.Context) (index.VectorIndex, func(), error) {
	switch c.Index.Type {
	case IndexMemory:
		return index.NewMemory(), func() {}, nil
	case IndexPostgres:
		dim := c.Embedder.Dimension
		if dim <= 0 {
			dim = embed.DefaultHashingDimension
		}
		pg, err := index.NewPostgres(ctx, c.Index.DSN, dim)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown index type %q", c.Index.Type)
}
