package searchurl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/x/envconf/searchurl"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected map[string]any
	}{
		{
			name: "elasticsearch index only",
			url:  "elasticsearch://127.0.0.1:9200/haystack",
			expected: map[string]any{
				"ENGINE":     "haystack.backends.elasticsearch_backend.ElasticsearchSearchEngine",
				"URL":        "http://127.0.0.1:9200",
				"INDEX_NAME": "haystack",
			},
		},
		{
			name: "elasticsearch with path prefix",
			url:  "elasticsearch5://search.local:9200/es/products/",
			expected: map[string]any{
				"ENGINE":     "haystack.backends.elasticsearch5_backend.Elasticsearch5SearchEngine",
				"URL":        "http://search.local:9200/es",
				"INDEX_NAME": "products",
			},
		},
		{
			name: "solr keeps path",
			url:  "solr://solr.local:8983/solr/core0",
			expected: map[string]any{
				"ENGINE": "haystack.backends.solr_backend.SolrEngine",
				"URL":    "http://solr.local:8983/solr/core0",
			},
		},
		{
			name: "whoosh path",
			url:  "whoosh:////var/lib/whoosh",
			expected: map[string]any{
				"ENGINE": "haystack.backends.whoosh_backend.WhooshEngine",
				"PATH":   "/var/lib/whoosh",
			},
		},
		{
			name: "simple",
			url:  "simple://",
			expected: map[string]any{
				"ENGINE": "haystack.backends.simple_backend.SimpleEngine",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := searchurl.Parse(tt.url, searchurl.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Settings())
		})
	}
}

func TestParseUnknownScheme(t *testing.T) {
	_, err := searchurl.Parse("sphinx://localhost:9312", searchurl.Options{})
	assert.ErrorIs(t, err, searchurl.ErrUnknownScheme)
	assert.EqualError(t, err, `unknown search scheme "sphinx"`)
}

func TestEngines(t *testing.T) {
	assert.Contains(t, searchurl.Engines(), "xapian_backend.XapianEngine")
}
