// Package graphfile reads and writes persisted graph documents of the
// shape {cards, relations?, connections?}, encoded as JSON or YAML.
package graphfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/nodegrid/internal/anchor"
	"github.com/vk/nodegrid/internal/cards"
	"github.com/vk/nodegrid/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a document has no cards array.
var ErrInvalidDocument = errors.New("invalid graph document")

// Document is a persisted graph.
type Document struct {
	Cards       []cards.CardConfig  `json:"cards" yaml:"cards"`
	Relations   []any               `json:"relations,omitempty" yaml:"relations,omitempty"`
	Connections []anchor.Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Load reads and parses the document at path.
func Load(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph %s: %w", path, err)
	}
	doc, err := Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a JSON or YAML document. A document whose cards field is
// missing or not an array is rejected; relations and connections fields
// that are present but not arrays are dropped with a warning.
func Parse(ctx context.Context, data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSON(ctx, trimmed)
	}
	return parseYAML(ctx, data)
}

func parseJSON(ctx context.Context, data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &Document{}
	raw, ok := fields["cards"]
	if !ok || !isJSONArray(raw) {
		return nil, fmt.Errorf("%w: cards must be an array", ErrInvalidDocument)
	}
	if err := json.Unmarshal(raw, &doc.Cards); err != nil {
		return nil, fmt.Errorf("%w: cards: %v", ErrInvalidDocument, err)
	}

	if raw, ok := fields["relations"]; ok && !isJSONNull(raw) {
		if isJSONArray(raw) {
			if err := json.Unmarshal(raw, &doc.Relations); err != nil {
				return nil, fmt.Errorf("%w: relations: %v", ErrInvalidDocument, err)
			}
		} else {
			warnNotArray(ctx, "relations")
		}
	}
	if raw, ok := fields["connections"]; ok && !isJSONNull(raw) {
		if isJSONArray(raw) {
			if err := json.Unmarshal(raw, &doc.Connections); err != nil {
				return nil, fmt.Errorf("%w: connections: %v", ErrInvalidDocument, err)
			}
		} else {
			warnNotArray(ctx, "connections")
		}
	}
	return doc, nil
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseYAML(ctx context.Context, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document must be a mapping", ErrInvalidDocument)
	}

	fields := make(map[string]*yaml.Node)
	mapping := root.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		fields[mapping.Content[i].Value] = mapping.Content[i+1]
	}

	doc := &Document{}
	node, ok := fields["cards"]
	if !ok || node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: cards must be an array", ErrInvalidDocument)
	}
	if err := node.Decode(&doc.Cards); err != nil {
		return nil, fmt.Errorf("%w: cards: %v", ErrInvalidDocument, err)
	}

	if node, ok := fields["relations"]; ok && !isYAMLNull(node) {
		if node.Kind == yaml.SequenceNode {
			if err := node.Decode(&doc.Relations); err != nil {
				return nil, fmt.Errorf("%w: relations: %v", ErrInvalidDocument, err)
			}
		} else {
			warnNotArray(ctx, "relations")
		}
	}
	if node, ok := fields["connections"]; ok && !isYAMLNull(node) {
		if node.Kind == yaml.SequenceNode {
			if err := node.Decode(&doc.Connections); err != nil {
				return nil, fmt.Errorf("%w: connections: %v", ErrInvalidDocument, err)
			}
		} else {
			warnNotArray(ctx, "connections")
		}
	}
	return doc, nil
}

func isYAMLNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func warnNotArray(ctx context.Context, field string) {
	ctxlog.FromContext(ctx).Warn("Graph document field is not an array, ignoring it.", "field", field)
}

// Save writes doc as indented JSON.
func Save(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}

// SaveFile writes doc to path, replacing any existing file.
func SaveFile(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Save(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing graph %s: %w", path, err)
	}
	return nil
}
