package tfidf

import (
	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/tokenize"
)

// Scan runs the scan-mode query path of spec §4.E: every chunk is
// tokenized on the fly, document frequencies are accumulated over the
// whole corpus, and each chunk is scored against data and summary
// separately before taking the max.
func Scan(provider ChunkProvider, kw Keywords, tok *tokenize.Tokenizer) ([]Result, error) {
	chunks, err := provider.AllChunks()
	if err != nil {
		return nil, err
	}
	return scoreChunks(chunks, kw, tok)
}

func scoreChunks(chunks []chunkmodel.Chunk, kw Keywords, tok *tokenize.Tokenizer) ([]Result, error) {
	n := len(chunks)
	queryTokens := kw.Tokens(tok)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	dataTF := make([]map[string]int, n)
	summaryTF := make([]map[string]int, n)
	for i, c := range chunks {
		dataTF[i] = countTerms(tok.Tokenize(c.Data))
		summaryTF[i] = countTerms(tok.Tokenize(c.Summary))
	}

	unique := uniqueTokens(queryTokens)
	dfData := make(map[string]int, len(unique))
	dfSummary := make(map[string]int, len(unique))
	for _, qt := range unique {
		for i := range chunks {
			if dataTF[i][qt] > 0 {
				dfData[qt]++
			}
			if summaryTF[i][qt] > 0 {
				dfSummary[qt]++
			}
		}
	}

	results := make([]Result, 0, n)
	for i, c := range chunks {
		dataScore := scoreField(queryTokens, dataTF[i], dfData, n)
		summaryScore := scoreField(queryTokens, summaryTF[i], dfSummary, n)
		if dataScore <= 0 && summaryScore <= 0 {
			continue
		}
		if dataScore >= summaryScore {
			results = append(results, Result{Uid: c.Uid, Score: dataScore, Matched: FieldData})
		} else {
			results = append(results, Result{Uid: c.Uid, Score: summaryScore, Matched: FieldSummary})
		}
	}
	sortResults(results)
	return results, nil
}

func scoreField(queryTokens []string, tf map[string]int, df map[string]int, n int) float64 {
	var total float64
	for _, qt := range queryTokens {
		total += logTF(tf[qt]) * smoothedIDF(n, df[qt])
	}
	return total
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
