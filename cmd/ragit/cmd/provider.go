package cmd

import (
	"fmt"
	"os"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/objstore"
)

// resolveProvider looks up modelName in the repository's model catalog
// and builds the llm.Provider it describes, reading the API key from
// the environment variable the catalog entry names. An empty modelName
// falls back to the "query"/"build" config block's configured default,
// which callers pass in already resolved.
func resolveProvider(store *objstore.Store, modelName string) (llm.Provider, error) {
	catalog, err := meta.LoadCatalog(store)
	if err != nil {
		return nil, err
	}
	model, ok := catalog.ByName(modelName)
	if !ok {
		return nil, fmt.Errorf("unknown model %q (run `ragit ls --models` to see the catalog)", modelName)
	}

	apiKey := ""
	if model.APIEnvVar != nil && *model.APIEnvVar != "" {
		apiKey = os.Getenv(*model.APIEnvVar)
		if apiKey == "" {
			return nil, fmt.Errorf("model %q requires environment variable %s to be set", model.Name, *model.APIEnvVar)
		}
	}

	switch model.APIProvider {
	case "anthropic":
		return llm.NewAnthropicProvider(llm.AnthropicConfig{
			Name:   model.Name,
			APIKey: apiKey,
			Model:  model.APIName,
		}), nil
	case "openai", "":
		return llm.NewOpenAiLikeProvider(llm.OpenAiLikeConfig{
			Name:   model.Name,
			APIKey: apiKey,
			Model:  model.APIName,
		}), nil
	default:
		return llm.NewOpenAiLikeProvider(llm.OpenAiLikeConfig{
			Name:   model.Name,
			APIKey: apiKey,
			Model:  model.APIName,
		}), nil
	}
}
