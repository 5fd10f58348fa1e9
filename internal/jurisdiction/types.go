package jurisdiction

import "gopkg.in/yaml.v3"

// Profile holds how responses are drafted for one patent office.
type Profile struct {
	// Code is the jurisdiction key (set during YAML unmarshaling)
	Code string `yaml:"-" json:"code"`

	DisplayName string `yaml:"display_name" json:"display_name"`

	// CitationAuthority is the practice manual arguments should cite
	CitationAuthority string `yaml:"citation_authority" json:"citation_authority"`

	ResponseTitle string   `yaml:"response_title" json:"response_title"`
	Statute       string   `yaml:"statute" json:"statute"`
	PracticeNotes []string `yaml:"practice_notes" json:"practice_notes"`
}

// profileFile is the root of the embedded YAML
type profileFile struct {
	Profiles []Profile `yaml:"-"`
}

// UnmarshalYAML keeps profiles in file order, which a plain map would lose.
func (f *profileFile) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Jurisdictions map[string]Profile `yaml:"jurisdictions"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "jurisdictions" {
			continue
		}
		// key, value, key, value...
		entries := node.Content[i+1].Content
		for j := 0; j+1 < len(entries); j += 2 {
			code := entries[j].Value
			if p, ok := m.Jurisdictions[code]; ok {
				p.Code = code
				f.Profiles = append(f.Profiles, p)
			}
		}
		break
	}
	return nil
}
