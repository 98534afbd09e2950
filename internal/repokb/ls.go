package repokb

import (
	"sort"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/meta"
)

// ListFiles returns every staged and processed path, sorted, for `ls
// --files`.
func (r *Repository) ListFiles() []string {
	paths := make([]string, 0, len(r.Header.StagedFiles)+len(r.Header.ProcessedFiles))
	paths = append(paths, r.Header.StagedFiles...)
	for p := range r.Header.ProcessedFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AllChunks returns every chunk in the object store, decoded. Repository
// satisfies tfidf.ChunkProvider through this method.
func (r *Repository) AllChunks() ([]chunkmodel.Chunk, error) {
	return chunkpipe.AllChunks(r.Store)
}

// ListImages returns the uid of every image blob whose chunk referenced
// it, deduplicated, for `ls --images`.
func (r *Repository) ListImages() ([]string, error) {
	chunks, err := r.AllChunks()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, c := range chunks {
		for _, u := range c.Images {
			seen[u.String()] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// ListModels returns the model catalog's names, for `ls --models`.
func (r *Repository) ListModels() ([]string, error) {
	catalog, err := meta.LoadCatalog(r.Store)
	if err != nil {
		return nil, err
	}
	return catalog.Names(), nil
}
