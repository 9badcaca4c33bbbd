package textnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCitations(t *testing.T) {
	t.Run("extracts every kind", func(t *testing.T) {
		text := "See https://example.org/paper and doi 10.1038/nature12373, " +
			"also arXiv:2301.00234 and PMID: 12345678."
		cites := ExtractCitations(text)
		require.Len(t, cites, 4)
		require.Equal(t, Citation{Value: "https://example.org/paper", Kind: CitationURL}, cites[0])
		require.Equal(t, Citation{Value: "10.1038/nature12373", Kind: CitationDOI}, cites[1])
		require.Equal(t, Citation{Value: "arXiv:2301.00234", Kind: CitationArxiv}, cites[2])
		require.Equal(t, Citation{Value: "PMID: 12345678", Kind: CitationPubMed}, cites[3])
	})

	t.Run("category order is fixed", func(t *testing.T) {
		// PMID appears first in the text but URLs are always extracted first.
		text := "PMID:999 then https://a.example/x"
		cites := ExtractCitations(text)
		require.Len(t, cites, 2)
		require.Equal(t, CitationURL, cites[0].Kind)
		require.Equal(t, CitationPubMed, cites[1].Kind)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		text := "https://a.example/x and again https://a.example/x"
		cites := ExtractCitations(text)
		require.Len(t, cites, 2)
		require.Equal(t, cites[0], cites[1])
	})

	t.Run("url stops at bracket or paren", func(t *testing.T) {
		cites := ExtractCitations("(https://a.example/x) [https://b.example/y]")
		require.Len(t, cites, 2)
		require.Equal(t, "https://a.example/x", cites[0].Value)
		require.Equal(t, "https://b.example/y", cites[1].Value)
	})

	t.Run("doi requires registrant prefix", func(t *testing.T) {
		require.Empty(t, ExtractCitations("version 10.1 of the spec"))
		require.Len(t, ExtractCitations("10.12345/abc.def"), 1)
	})

	t.Run("arxiv id needs four or five digits", func(t *testing.T) {
		require.Len(t, ExtractCitations("arXiv:2301.00234"), 1)
		require.Len(t, ExtractCitations("arXiv:2301.0023"), 1)
		require.Empty(t, ExtractCitations("arXiv:2301.1"))
	})

	t.Run("pmid allows spacing", func(t *testing.T) {
		cites := ExtractCitations("PMID:42 and PMID:  77")
		require.Len(t, cites, 2)
	})

	t.Run("empty and citation-free input", func(t *testing.T) {
		require.Nil(t, ExtractCitations(""))
		require.Empty(t, ExtractCitations("no references here"))
	})
}
