package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/types"
)

const duplicateBackendName = "duplicates"

const duplicatePreviewLines = 3

// DuplicateBackend finds near-duplicate file pairs by comparing
// normalized line sequences. A cheap token-set similarity prefilter
// prunes the pairwise candidate set before the exact line matching
// runs.
type DuplicateBackend struct {
	threshold       float64
	minLines        int
	maxCompareFiles int
}

// NewDuplicateBackend creates the duplicate detection backend
func NewDuplicateBackend(cfg *config.Config) *DuplicateBackend {
	return &DuplicateBackend{
		threshold:       cfg.Analysis.SimilarityThreshold,
		minLines:        cfg.Analysis.MinDuplicateLines,
		maxCompareFiles: cfg.Analysis.MaxCompareFiles,
	}
}

func (b *DuplicateBackend) Name() string { return duplicateBackendName }

func (b *DuplicateBackend) Description() string {
	return "Cross-file duplicate code detection"
}

func (b *DuplicateBackend) Capabilities() []Capability {
	return []Capability{CapabilityDuplication}
}

func (b *DuplicateBackend) IsAvailable() bool { return true }

// candidateFile is one file prepared for pairwise comparison
type candidateFile struct {
	path       string
	lines      []string
	joined     string
	totalLines int
}

func (b *DuplicateBackend) Analyze(ctx context.Context, files []types.SourceFile) (*types.AnalysisResult, error) {
	result := types.NewAnalysisResult()

	candidates := make([]candidateFile, 0, len(files))
	for _, f := range files {
		lines := normalizeLines(f.Content)
		if len(lines) < b.minLines {
			continue
		}
		candidates = append(candidates, candidateFile{
			path:       f.Path,
			lines:      lines,
			joined:     strings.Join(lines, "\n"),
			totalLines: f.TotalLines(),
		})
	}
	if len(candidates) > b.maxCompareFiles {
		// Keep the largest files; big files carry the costly duplication
		sort.Slice(candidates, func(i, j int) bool {
			return len(candidates[i].lines) > len(candidates[j].lines)
		})
		candidates = candidates[:b.maxCompareFiles]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].path < candidates[j].path
	})

	// The prefilter floor is deliberately loose; Jaccard on shingles
	// underestimates reordered duplication that line matching catches.
	prefilterFloor := float32(b.threshold / 2)

	compared := 0
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			a, c := candidates[i], candidates[j]
			if edlib.JaccardSimilarity(a.joined, c.joined, 2) < prefilterFloor {
				continue
			}
			compared++

			similarity, matched := SimilarityRatio(a.lines, c.lines)
			if similarity < b.threshold {
				continue
			}
			result.Duplicates = append(result.Duplicates, buildDuplicateBlock(a, c, similarity, matched))
		}
	}

	sort.Slice(result.Duplicates, func(i, j int) bool {
		return result.Duplicates[i].Similarity > result.Duplicates[j].Similarity
	})
	result.Metrics["duplicates.candidate_files"] = float64(len(candidates))
	result.Metrics["duplicates.pairs_compared"] = float64(compared)
	result.Metrics["duplicates.blocks_found"] = float64(len(result.Duplicates))
	return result, nil
}

// SimilarityRatio computes the matching-blocks ratio between two line
// sequences along with the count of matched lines. The ratio is
// symmetric and 1.0 for identical sequences.
func SimilarityRatio(a, b []string) (float64, int) {
	matcher := difflib.NewMatcher(a, b)
	matched := 0
	for _, block := range matcher.GetMatchingBlocks() {
		matched += block.Size
	}
	return matcher.Ratio(), matched
}

func buildDuplicateBlock(a, b candidateFile, similarity float64, matchedLines int) types.DuplicateBlock {
	preview := a.lines
	if len(preview) > duplicatePreviewLines {
		preview = preview[:duplicatePreviewLines]
	}

	h := xxhash.New()
	h.WriteString(a.joined)
	h.WriteString("\x00")
	h.WriteString(b.joined)

	return types.DuplicateBlock{
		ID:         fmt.Sprintf("dup-%016x", h.Sum64()),
		LineCount:  matchedLines,
		Similarity: similarity,
		Preview:    strings.Join(preview, "\n"),
		Locations: []types.DuplicateLocation{
			{FilePath: a.path, StartLine: 1, EndLine: a.totalLines},
			{FilePath: b.path, StartLine: 1, EndLine: b.totalLines},
		},
	}
}

// normalizeLines strips surrounding whitespace and drops blank lines
// so indentation and spacing changes do not mask duplication
func normalizeLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
