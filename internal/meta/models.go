package meta

import (
	"encoding/json"

	"github.com/ragit-kb/ragit/internal/objstore"
)

// Model is one entry of the AI model catalog (spec §4.I). Pointer fields
// distinguish "not set" from the zero value so mergeModel can tell which
// side of a merge actually specified a value.
type Model struct {
	Name                     string   `json:"name"`
	APIName                  string   `json:"api_name"`
	APIProvider              string   `json:"api_provider"`
	CanReadImages            bool     `json:"can_read_images"`
	DollarsPer1BInputTokens  float64  `json:"dollars_per_1b_input_tokens"`
	DollarsPer1BOutputTokens float64  `json:"dollars_per_1b_output_tokens"`
	Explanation              *string  `json:"explanation,omitempty"`
	APIEnvVar                *string  `json:"api_env_var,omitempty"`
}

// Catalog is the ordered model list persisted at models.json. Order is
// preserved across loads and merges so `ls --models` output is stable.
type Catalog []Model

// LoadCatalog reads models.json, defaulting to an empty catalog.
func LoadCatalog(store *objstore.Store) (Catalog, error) {
	data, err := objstore.ReadFileOrDefault(store.ModelsPath(), nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Catalog{}, nil
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the catalog atomically.
func (c Catalog) Save(store *objstore.Store) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return objstore.WriteFile(store.ModelsPath(), data, objstore.Atomic)
}

// ByName returns the model named name, if present.
func (c Catalog) ByName(name string) (Model, bool) {
	for _, m := range c {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// Names returns every model's name, in catalog order, for
// ragiterr.InvalidModel's suggested-candidates list.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, m := range c {
		names[i] = m.Name
	}
	return names
}

// Merge folds incoming into c: an incoming model whose name matches an
// existing entry is merged field-by-field (non-null incoming wins,
// spec §4.I); a new name is appended, preserving catalog order.
func (c Catalog) Merge(incoming Catalog) Catalog {
	out := make(Catalog, len(c))
	copy(out, c)

	for _, in := range incoming {
		idx := -1
		for i, m := range out {
			if m.Name == in.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, in)
			continue
		}
		out[idx] = mergeModel(out[idx], in)
	}
	return out
}

// mergeModel overlays non-zero/non-nil fields of incoming onto base.
func mergeModel(base, incoming Model) Model {
	if incoming.APIName != "" {
		base.APIName = incoming.APIName
	}
	if incoming.APIProvider != "" {
		base.APIProvider = incoming.APIProvider
	}
	if incoming.CanReadImages {
		base.CanReadImages = incoming.CanReadImages
	}
	if incoming.DollarsPer1BInputTokens != 0 {
		base.DollarsPer1BInputTokens = incoming.DollarsPer1BInputTokens
	}
	if incoming.DollarsPer1BOutputTokens != 0 {
		base.DollarsPer1BOutputTokens = incoming.DollarsPer1BOutputTokens
	}
	if incoming.Explanation != nil {
		base.Explanation = incoming.Explanation
	}
	if incoming.APIEnvVar != nil {
		base.APIEnvVar = incoming.APIEnvVar
	}
	return base
}
