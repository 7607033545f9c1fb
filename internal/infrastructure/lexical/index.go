package lexical

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// BM25 Okapi parameters.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// Index is the term-frequency index owned by this service. A built snapshot
// is immutable; Rebuild replaces it with a single atomic pointer store so an
// in-flight query observes either the fully-old or fully-new index.
type Index struct {
	path string
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	chunks    []domain.Chunk
	tokens    [][]string
	termFreqs []map[string]int
	docLens   []int
	avgLen    float64
	idf       map[string]float64
}

// New creates an unbuilt index. path is where Save/Load persist the
// snapshot; it may be empty for a purely in-memory index.
func New(path string) *Index {
	return &Index{path: path}
}

// Rebuild tokenizes every chunk, computes the BM25 statistics in one pass
// and swaps the new snapshot in atomically. There is no incremental
// mutation; corpus changes always arrive as a full chunk list.
func (idx *Index) Rebuild(chunks []domain.Chunk) {
	tokens := make([][]string, len(chunks))
	for i, c := range chunks {
		tokens[i] = Tokenize(c.Text)
	}
	idx.snap.Store(buildSnapshot(chunks, tokens))
}

// Query tokenizes the query text the same way as the corpus, scores every
// document and returns the topK by descending score. Ties keep corpus
// order. An unbuilt or empty index returns nil.
func (idx *Index) Query(text string, topK int) []domain.ScoredResult {
	snap := idx.snap.Load()
	if snap == nil || len(snap.chunks) == 0 || topK <= 0 {
		return nil
	}

	queryTokens := Tokenize(text)
	if len(queryTokens) == 0 {
		return nil
	}

	scores := make([]float64, len(snap.chunks))
	for _, term := range queryTokens {
		idf, ok := snap.idf[term]
		if !ok {
			continue
		}
		for i := range snap.chunks {
			tf := float64(snap.termFreqs[i][term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(snap.docLens[i])/snap.avgLen
			scores[i] += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
		}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if topK < len(order) {
		order = order[:topK]
	}

	out := make([]domain.ScoredResult, 0, len(order))
	for _, i := range order {
		c := snap.chunks[i]
		out = append(out, domain.ScoredResult{
			ID:           c.ID,
			Text:         c.Text,
			DocumentName: c.DocumentName,
			ChunkIndex:   c.ChunkIndex,
			PageNumber:   c.PageNumber,
			IsTable:      c.IsTable,
			LexicalScore: scores[i],
		})
	}
	return out
}

// Size reports the number of indexed chunks.
func (idx *Index) Size() int {
	snap := idx.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.chunks)
}

func buildSnapshot(chunks []domain.Chunk, tokens [][]string) *snapshot {
	snap := &snapshot{
		chunks:    chunks,
		tokens:    tokens,
		termFreqs: make([]map[string]int, len(chunks)),
		docLens:   make([]int, len(chunks)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	totalLen := 0
	for i, docTokens := range tokens {
		tf := make(map[string]int, len(docTokens))
		for _, term := range docTokens {
			tf[term]++
		}
		snap.termFreqs[i] = tf
		snap.docLens[i] = len(docTokens)
		totalLen += len(docTokens)
		for term := range tf {
			docFreq[term]++
		}
	}
	if len(chunks) > 0 {
		snap.avgLen = float64(totalLen) / float64(len(chunks))
	}
	if snap.avgLen == 0 {
		snap.avgLen = 1
	}

	// Okapi IDF with the rank_bm25 negative-IDF floor: terms appearing in
	// more than half the corpus get epsilon * average IDF instead of a
	// negative value.
	n := float64(len(chunks))
	idfSum := 0.0
	var negative []string
	for term, df := range docFreq {
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		snap.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(docFreq) > 0 {
		eps := bm25Epsilon * idfSum / float64(len(docFreq))
		for _, term := range negative {
			snap.idf[term] = eps
		}
	}
	return snap
}

// Tokenize lower-cases, strips non-word runes and splits on whitespace,
// matching the corpus and query sides exactly.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
