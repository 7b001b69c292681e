package config

import (
	"encoding/json"
	"fmt"
)

// TemplateMap decodes Templates into scenario -> method -> template id.
func (n NotifyConfig) TemplateMap() (map[string]map[string]string, error) {
	var m map[string]map[string]string
	if err := json.Unmarshal([]byte(n.Templates), &m); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	for scenario, methods := range m {
		for method, id := range methods {
			if id == "" {
				return nil, fmt.Errorf("template for %s/%s is empty", scenario, method)
			}
		}
	}
	return m, nil
}

// OrganizationKeyMap decodes OrganizationKeys into organization -> API key.
func (n NotifyConfig) OrganizationKeyMap() (map[string]SecretString, error) {
	var m map[string]SecretString
	if err := json.Unmarshal([]byte(n.OrganizationKeys), &m); err != nil {
		return nil, fmt.Errorf("decode organization keys: %w", err)
	}
	return m, nil
}

// KeyFor returns the API key configured for organization, falling back to
// the default key.
func (n NotifyConfig) KeyFor(keys map[string]SecretString, organization string) SecretString {
	if k, ok := keys[organization]; ok && k != "" {
		return k
	}
	return n.APIKey
}
