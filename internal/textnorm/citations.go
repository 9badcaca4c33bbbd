package textnorm

import "regexp"

// CitationKind classifies an extracted citation.
type CitationKind string

const (
	CitationURL    CitationKind = "url"
	CitationDOI    CitationKind = "doi"
	CitationArxiv  CitationKind = "arxiv"
	CitationPubMed CitationKind = "pubmed"
)

// Citation is a substring of model output identified as a reference.
// Validity and credibility are computed downstream, not stored here.
type Citation struct {
	Value string
	Kind  CitationKind
}

var (
	urlRE    = regexp.MustCompile(`https?://[^\s\])]+`)
	doiRE    = regexp.MustCompile(`\b10\.\d{4,9}/[-._;()/:A-Za-z0-9]+\b`)
	arxivRE  = regexp.MustCompile(`arXiv:\d{4}\.\d{4,5}`)
	pubmedRE = regexp.MustCompile(`PMID:\s*\d+`)
)

// ExtractCitations scans text for web links, DOIs, arXiv IDs, and PubMed
// IDs, in that fixed category order. Repeated citations are kept; they
// count multiple times in downstream ratios. Empty input yields nil.
func ExtractCitations(text string) []Citation {
	if text == "" {
		return nil
	}

	var cites []Citation
	for _, m := range urlRE.FindAllString(text, -1) {
		cites = append(cites, Citation{Value: m, Kind: CitationURL})
	}
	for _, m := range doiRE.FindAllString(text, -1) {
		cites = append(cites, Citation{Value: m, Kind: CitationDOI})
	}
	for _, m := range arxivRE.FindAllString(text, -1) {
		cites = append(cites, Citation{Value: m, Kind: CitationArxiv})
	}
	for _, m := range pubmedRE.FindAllString(text, -1) {
		cites = append(cites, Citation{Value: m, Kind: CitationPubMed})
	}
	return cites
}
