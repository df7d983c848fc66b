// Package file stores workflow graphs as YAML documents on disk, one file per
// workflow. It backs the CLI's validate and run commands and small
// single-node deployments.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// Document is the YAML shape of a workflow definition file.
type Document struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name,omitempty"`
	Nodes       []domain.Node       `yaml:"nodes"`
	Connections []domain.Connection `yaml:"connections"`
}

// Store implements ports.GraphStore over a directory of YAML files.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workflow directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(workflowID string) string {
	return filepath.Join(s.dir, workflowID+".yaml")
}

// Load reads and parses the workflow file.
func (s *Store) Load(ctx context.Context, workflowID string) (*graph.Graph, error) {
	data, err := os.ReadFile(s.path(workflowID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if g.WorkflowID == "" {
		g.WorkflowID = workflowID
	}
	return g, nil
}

// Save writes the workflow file atomically via a temp file rename.
func (s *Store) Save(ctx context.Context, g *graph.Graph) error {
	doc := Document{
		ID:          g.WorkflowID,
		Name:        g.Name,
		Nodes:       g.Nodes(),
		Connections: g.Connections(),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+g.WorkflowID+"-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write workflow: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path(g.WorkflowID))
}

// Parse decodes a workflow YAML document into a graph.
func Parse(data []byte) (*graph.Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow yaml: %w", err)
	}
	g := graph.New(doc.ID, doc.Nodes, doc.Connections)
	g.Name = doc.Name
	return g, nil
}

// LoadFile parses one workflow file directly, deriving the workflow ID from
// the file name when the document omits it.
func LoadFile(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if g.WorkflowID == "" {
		base := filepath.Base(path)
		g.WorkflowID = base[:len(base)-len(filepath.Ext(base))]
	}
	return g, nil
}
