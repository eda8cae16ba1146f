package rbac

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrFailedToReadRoleFile wraps I/O and parse failures of a role file.
var ErrFailedToReadRoleFile = errors.New("rbac.failed_to_read_role_file")

// fileSource loads the role catalog from a YAML file.
//
// File format:
//
//	roles:
//	  - id: 1
//	    name: ADMIN
//	    scope: GLOBAL
//	    permissions: [TENANT_CREATE, TENANT_READ]
type fileSource struct {
	path string
}

// NewFileSource creates a Source that reads roles from the YAML file at path.
// The file is read on every Load, so a catalog rebuild picks up edits.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

type roleFile struct {
	Roles []roleEntry `yaml:"roles"`
}

type roleEntry struct {
	ID          int16    `yaml:"id"`
	Name        string   `yaml:"name"`
	Scope       string   `yaml:"scope"`
	Permissions []string `yaml:"permissions"`
}

func (s *fileSource) Load(ctx context.Context) ([]Role, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToReadRoleFile, err)
	}

	var f roleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToReadRoleFile, err)
	}

	roles := make([]Role, 0, len(f.Roles))
	for _, e := range f.Roles {
		roles = append(roles, Role{
			ID:          e.ID,
			Name:        e.Name,
			Scope:       Scope(e.Scope),
			Permissions: e.Permissions,
		})
	}
	return roles, nil
}
