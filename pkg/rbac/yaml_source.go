package rbac

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlSource struct {
	open func() (io.ReadCloser, error)
}

// NewYAMLFileSource reads role definitions from a YAML file on every Load.
//
//	STAFF:
//	  permissions: ["order:*", "photo:read"]
//	ADMIN:
//	  inherits: [STAFF]
//	  permissions: ["*"]
func NewYAMLFileSource(path string) RoleSource {
	return &yamlSource{open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

// NewYAMLSource reads role definitions from r. The reader is consumed by the first Load.
func NewYAMLSource(r io.Reader) RoleSource {
	return &yamlSource{open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

func (s *yamlSource) Load(context.Context) (map[string]RoleDefinition, error) {
	rc, err := s.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var roles map[string]RoleDefinition
	dec := yaml.NewDecoder(rc)
	dec.KnownFields(true)
	if err := dec.Decode(&roles); err != nil {
		return nil, fmt.Errorf("decode role definitions: %w", err)
	}
	return roles, nil
}
