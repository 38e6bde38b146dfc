// Package corpus loads document sets for indexing, either from the
// embedded seed corpus or from user-supplied YAML files.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ragflow/pkg/pipeline"
)

//go:embed seed.yaml
var seedYAML []byte

type fileDoc struct {
	ID        string `yaml:"id"`
	Source    string `yaml:"source"`
	CreatedAt string `yaml:"created_at"`
	Content   string `yaml:"content"`
}

type corpusFile struct {
	Documents []fileDoc `yaml:"documents"`
}

// Seed returns the embedded demo corpus.
func Seed() []pipeline.Document {
	docs, err := parse(seedYAML)
	if err != nil {
		// The seed ships inside the binary; a parse failure is a build
		// defect, not a runtime condition.
		panic(fmt.Sprintf("corpus: embedded seed is invalid: %v", err))
	}
	return docs
}

// LoadFile reads a corpus from a YAML file with the same shape as the
// embedded seed.
func LoadFile(path string) ([]pipeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	docs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return docs, nil
}

func parse(data []byte) ([]pipeline.Document, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus yaml: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("corpus has no documents")
	}

	seen := make(map[string]bool, len(f.Documents))
	docs := make([]pipeline.Document, 0, len(f.Documents))
	for i, fd := range f.Documents {
		if strings.TrimSpace(fd.Content) == "" {
			return nil, fmt.Errorf("document %d has no content", i)
		}
		id := fd.ID
		if id == "" {
			id = fmt.Sprintf("doc-%d", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate document id %q", id)
		}
		seen[id] = true

		meta := map[string]string{}
		if fd.Source != "" {
			meta["source"] = fd.Source
		}
		if fd.CreatedAt != "" {
			meta["created_at"] = fd.CreatedAt
		}
		docs = append(docs, pipeline.Document{ID: id, Content: fd.Content, Metadata: meta})
	}
	return docs, nil
}
