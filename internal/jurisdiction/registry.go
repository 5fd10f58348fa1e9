package jurisdiction

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

//go:embed config/profiles.yaml
var profilesYAML []byte

// Registry resolves drafting profiles by jurisdiction. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	profiles map[models.Jurisdiction]*Profile
	order    []models.Jurisdiction
}

// NewRegistry loads the embedded profiles and checks every supported
// jurisdiction has one.
func NewRegistry() (*Registry, error) {
	return parseRegistry(profilesYAML)
}

func parseRegistry(data []byte) (*Registry, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jurisdiction profiles: %w", err)
	}

	r := &Registry{profiles: make(map[models.Jurisdiction]*Profile, len(file.Profiles))}
	for i := range file.Profiles {
		p := &file.Profiles[i]
		j := models.Jurisdiction(p.Code)
		if !j.IsValid() {
			return nil, fmt.Errorf("profile for unsupported jurisdiction %q", p.Code)
		}
		if p.CitationAuthority == "" {
			return nil, fmt.Errorf("profile %s missing citation_authority", p.Code)
		}
		r.profiles[j] = p
		r.order = append(r.order, j)
	}

	for _, j := range models.Jurisdictions {
		if _, ok := r.profiles[j]; !ok {
			return nil, fmt.Errorf("no profile for jurisdiction %s", j)
		}
	}
	return r, nil
}

// Get returns the profile for j.
func (r *Registry) Get(j models.Jurisdiction) (*Profile, error) {
	p, ok := r.profiles[j]
	if !ok {
		return nil, domain.Validationf("unsupported jurisdiction %q", j)
	}
	return p, nil
}

// List returns every profile in file order.
func (r *Registry) List() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, j := range r.order {
		out = append(out, r.profiles[j])
	}
	return out
}
