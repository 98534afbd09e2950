package tfidf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/tokenize"
	"github.com/ragit-kb/ragit/internal/uidkit"
	"lukechampine.com/blake3"
)

// Posting is one chunk's term frequency for a token within a single field.
type Posting struct {
	Uid uidkit.Uid `cbor:"uid"`
	TF  int        `cbor:"tf"`
}

// Index is the in-memory form of the inverted index spec §4.E describes:
// a map from token to posting list, built once and consulted on every
// query afterward instead of rescanning every chunk.
type Index struct {
	N           int // total chunk count, for idf
	Data        map[string][]Posting
	Summary     map[string][]Posting
	fingerprint string
}

type shardFile struct {
	Data    map[string][]Posting `cbor:"data"`
	Summary map[string][]Posting `cbor:"summary"`
}

// shardDir returns the two-hex-character shard directory a token's
// postings live under (ii/<token-shard>/..., spec §4.B).
func shardDir(token string) string {
	h := blake3.Sum256([]byte(token))
	return fmt.Sprintf("%02x", h[0])
}

const bucketFile = "postings.cbor"
const fingerprintFile = "fingerprint"

// Build constructs an Index from every chunk provider yields. It does not
// touch disk; callers persist the result with Save.
func Build(provider ChunkProvider, tok *tokenize.Tokenizer) (*Index, error) {
	chunks, err := provider.AllChunks()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		N:       len(chunks),
		Data:    make(map[string][]Posting),
		Summary: make(map[string][]Posting),
	}
	for _, c := range chunks {
		addPostings(idx.Data, c.Uid, tok.Tokenize(c.Data))
		addPostings(idx.Summary, c.Uid, tok.Tokenize(c.Summary))
	}
	idx.fingerprint = fingerprintOfUids(chunkUids(chunks))
	return idx, nil
}

func addPostings(dst map[string][]Posting, uid uidkit.Uid, tokens []string) {
	for token, tf := range countTerms(tokens) {
		dst[token] = append(dst[token], Posting{Uid: uid, TF: tf})
	}
}

// BuildII is the entry point spec §4.E names: it is a no-op if the index
// already on disk under store.IIDir() matches the current chunk set
// (idempotent rebuild), and otherwise builds and persists a fresh index.
func BuildII(store *objstore.Store, provider ChunkProvider, tok *tokenize.Tokenizer) (*Index, error) {
	chunks, err := provider.AllChunks()
	if err != nil {
		return nil, err
	}
	fp := fingerprintOfUids(chunkUids(chunks))

	existingFp, _ := objstore.ReadFileOrDefault(filepath.Join(store.IIDir(), fingerprintFile), nil)
	if string(existingFp) == fp && fp != "" {
		return Load(store)
	}

	idx := &Index{N: len(chunks), Data: make(map[string][]Posting), Summary: make(map[string][]Posting), fingerprint: fp}
	for _, c := range chunks {
		addPostings(idx.Data, c.Uid, tok.Tokenize(c.Data))
		addPostings(idx.Summary, c.Uid, tok.Tokenize(c.Summary))
	}
	if err := Save(store, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func chunkUids(chunks []chunkmodel.Chunk) []uidkit.Uid {
	uids := make([]uidkit.Uid, len(chunks))
	for i, c := range chunks {
		uids[i] = c.Uid
	}
	return uids
}

func fingerprintOfUids(uids []uidkit.Uid) string {
	sorted := make([]string, len(uids))
	for i, u := range uids {
		sorted[i] = u.String()
	}
	sort.Strings(sorted)
	h := blake3.New(32, nil)
	for _, s := range sorted {
		_, _ = h.Write([]byte(s))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Save persists idx under store.IIDir(), sharding postings by token hash
// prefix, plus a fingerprint file BuildII uses to detect staleness.
func Save(store *objstore.Store, idx *Index) error {
	shards := make(map[string]*shardFile)
	shardFor := func(token string) *shardFile {
		d := shardDir(token)
		sf, ok := shards[d]
		if !ok {
			sf = &shardFile{Data: make(map[string][]Posting), Summary: make(map[string][]Posting)}
			shards[d] = sf
		}
		return sf
	}
	for token, postings := range idx.Data {
		sf := shardFor(token)
		sf.Data[token] = postings
	}
	for token, postings := range idx.Summary {
		sf := shardFor(token)
		sf.Summary[token] = postings
	}

	for dir, sf := range shards {
		blob, err := cbor.Marshal(sf)
		if err != nil {
			return err
		}
		path := filepath.Join(store.IIDir(), dir, bucketFile)
		if err := objstore.WriteFile(path, blob, objstore.CreateOrTruncate); err != nil {
			return err
		}
	}

	return objstore.WriteFile(filepath.Join(store.IIDir(), fingerprintFile), []byte(idx.fingerprint), objstore.CreateOrTruncate)
}

// listShardDirs returns the shard directory names present under dir.
func listShardDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Load reconstructs an Index by reading every shard file under
// store.IIDir(). Readers tolerate a missing ii/ directory by returning an
// empty index, per spec §4.B's "readers must tolerate missing optional
// files."
func Load(store *objstore.Store) (*Index, error) {
	idx := &Index{Data: make(map[string][]Posting), Summary: make(map[string][]Posting)}

	entries, err := listShardDirs(store.IIDir())
	if err != nil {
		return idx, nil
	}

	seen := make(map[uidkit.Uid]struct{})
	for _, dir := range entries {
		blob, err := objstore.ReadFile(filepath.Join(store.IIDir(), dir, bucketFile))
		if err != nil {
			continue
		}
		var sf shardFile
		if err := cbor.Unmarshal(blob, &sf); err != nil {
			return nil, err
		}
		for token, postings := range sf.Data {
			idx.Data[token] = postings
			for _, p := range postings {
				seen[p.Uid] = struct{}{}
			}
		}
		for token, postings := range sf.Summary {
			idx.Summary[token] = postings
			for _, p := range postings {
				seen[p.Uid] = struct{}{}
			}
		}
	}
	idx.N = len(seen)

	fp, _ := objstore.ReadFileOrDefault(filepath.Join(store.IIDir(), fingerprintFile), nil)
	idx.fingerprint = string(fp)
	return idx, nil
}

// Query scores every chunk referenced by the query tokens' posting lists,
// the inverted-index-mode counterpart to Scan.
func (idx *Index) Query(kw Keywords, tok *tokenize.Tokenizer) []Result {
	queryTokens := kw.Tokens(tok)
	if len(queryTokens) == 0 {
		return nil
	}

	dataScores := make(map[uidkit.Uid]float64)
	summaryScores := make(map[uidkit.Uid]float64)

	accumulate := func(field map[string][]Posting, scores map[uidkit.Uid]float64) {
		for _, qt := range queryTokens {
			postings := field[qt]
			idf := smoothedIDF(idx.N, len(postings))
			for _, p := range postings {
				scores[p.Uid] += logTF(p.TF) * idf
			}
		}
	}
	accumulate(idx.Data, dataScores)
	accumulate(idx.Summary, summaryScores)

	allUids := make(map[uidkit.Uid]struct{})
	for u := range dataScores {
		allUids[u] = struct{}{}
	}
	for u := range summaryScores {
		allUids[u] = struct{}{}
	}

	results := make([]Result, 0, len(allUids))
	for u := range allUids {
		d, s := dataScores[u], summaryScores[u]
		if d >= s {
			results = append(results, Result{Uid: u, Score: d, Matched: FieldData})
		} else {
			results = append(results, Result{Uid: u, Score: s, Matched: FieldSummary})
		}
	}
	sortResults(results)
	return results
}
