package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/attribench/attribench/internal/models"
	"github.com/attribench/attribench/internal/rubric"
	"github.com/attribench/attribench/internal/textnorm"
)

// Metric names for the citation task.
const (
	MetricCitationPresence = "citation_presence"
	MetricCitationValidity = "citation_validity"
	MetricCitationQuality  = "citation_quality"
)

// Rubric thresholds for the citation task.
const (
	citationPresenceThreshold = 0.90
	citationValidityThreshold = 0.90
	citationQualityThreshold  = 0.70
)

// highCredDomains is the allow-list used as a proxy for citation
// trustworthiness. Substring match against the lowercased citation.
var highCredDomains = []string{
	".gov",
	".edu",
	".org",
	"nih.gov",
	"ncbi.nlm.nih.gov",
	"who.int",
	"cdc.gov",
	"arxiv.org",
}

// CitationArgs holds suite-level overrides for the citation computer.
type CitationArgs struct {
	// ExtraDomains extends the high-credibility allow-list.
	ExtraDomains []string `mapstructure:"extra_domains"`
}

// citationComputer scores citation presence, validity, and quality over
// one batch of free-text responses.
type citationComputer struct {
	domains  []string
	resolver LinkResolver
}

// NewCitationComputer creates the citation computer. The link resolver is
// a required collaborator: URL and DOI validity is decided outside the
// scoring engine and an unresolved link counts as invalid.
func NewCitationComputer(args CitationArgs, resolver LinkResolver) (*citationComputer, error) {
	if resolver == nil {
		return nil, fmt.Errorf("citation computer requires a link resolver")
	}
	domains := append([]string{}, highCredDomains...)
	for _, d := range args.ExtraDomains {
		domains = append(domains, strings.ToLower(d))
	}
	return &citationComputer{domains: domains, resolver: resolver}, nil
}

func (c *citationComputer) Task() models.Task { return models.TaskCitation }

func (c *citationComputer) Compute(ctx context.Context, records []models.EvaluationRecord) (*models.ModelScoreReport, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	withCites := 0
	totalCites := 0
	validCites := 0
	highCredCites := 0

	for _, rec := range records {
		cites := textnorm.ExtractCitations(rec.ModelOutput)
		if len(cites) > 0 {
			withCites++
		}

		for _, cite := range cites {
			totalCites++
			if c.isValid(ctx, cite) {
				validCites++
			}
			if c.isHighCredibility(cite.Value) {
				highCredCites++
			}
		}
	}

	presenceRatio := ratioOf(withCites, len(records))
	validityRatio := ratioOf(validCites, totalCites)
	qualityRatio := ratioOf(highCredCites, totalCites)

	presenceTable := rubric.Binary(citationPresenceThreshold)
	validityTable := rubric.Binary(citationValidityThreshold)
	qualityTable := rubric.Binary(citationQualityThreshold)

	metrics := []models.MetricResult{
		{
			Name:     MetricCitationPresence,
			Ratio:    presenceRatio,
			Score:    presenceTable.Score(presenceRatio),
			ScaleMax: presenceTable.ScaleMax,
			Eligible: len(records),
			Details:  map[string]any{"responses_with_citations": withCites},
		},
		{
			Name:     MetricCitationValidity,
			Ratio:    validityRatio,
			Score:    validityTable.Score(validityRatio),
			ScaleMax: validityTable.ScaleMax,
			Eligible: totalCites,
			Details:  map[string]any{"valid_citations": validCites, "total_citations": totalCites},
		},
		{
			Name:     MetricCitationQuality,
			Ratio:    qualityRatio,
			Score:    qualityTable.Score(qualityRatio),
			ScaleMax: qualityTable.ScaleMax,
			Eligible: totalCites,
			Details:  map[string]any{"high_credibility_citations": highCredCites},
		},
	}

	weights := rubric.Weighting{
		MetricCitationPresence: 1.0 / 3.0,
		MetricCitationValidity: 1.0 / 3.0,
		MetricCitationQuality:  1.0 / 3.0,
	}
	gate := rubric.Gate{
		MetricCitationPresence: 1,
		MetricCitationValidity: 1,
		MetricCitationQuality:  1,
	}

	return buildReport(models.TaskCitation, metrics, weights, gate, len(records)), nil
}

// isValid checks a single citation. URLs and DOIs go through the resolver;
// arXiv and PubMed IDs that matched their lexical pattern count as valid.
func (c *citationComputer) isValid(ctx context.Context, cite textnorm.Citation) bool {
	switch cite.Kind {
	case textnorm.CitationURL:
		return c.resolver.Resolve(ctx, cite.Value)
	case textnorm.CitationDOI:
		return c.resolver.Resolve(ctx, "https://doi.org/"+cite.Value)
	default:
		return true
	}
}

func (c *citationComputer) isHighCredibility(citation string) bool {
	lower := strings.ToLower(citation)
	for _, domain := range c.domains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
