// Package searchurl parses search engine URLs such as elasticsearch://host:9200/index
// into a HAYSTACK_CONNECTIONS descriptor.
package searchurl

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrorCode defines string error
type ErrorCode string

func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrUnknownScheme is returned for URLs whose scheme has no engine
	ErrUnknownScheme = ErrorCode("unknown search scheme")
	// ErrInvalidURL is returned when the URL cannot be parsed
	ErrInvalidURL = ErrorCode("invalid search URL")
)

type engine struct {
	name     string
	usesURL  bool
	usesIdx  bool
	usesPath bool
}

var engines = map[string]engine{
	"elasticsearch":  {name: "haystack.backends.elasticsearch_backend.ElasticsearchSearchEngine", usesURL: true, usesIdx: true},
	"elasticsearch2": {name: "haystack.backends.elasticsearch2_backend.Elasticsearch2SearchEngine", usesURL: true, usesIdx: true},
	"elasticsearch5": {name: "haystack.backends.elasticsearch5_backend.Elasticsearch5SearchEngine", usesURL: true, usesIdx: true},
	"elasticsearch7": {name: "haystack.backends.elasticsearch7_backend.Elasticsearch7SearchEngine", usesURL: true, usesIdx: true},
	"solr":           {name: "haystack.backends.solr_backend.SolrEngine", usesURL: true},
	"whoosh":         {name: "haystack.backends.whoosh_backend.WhooshEngine", usesPath: true},
	"xapian":         {name: "xapian_backend.XapianEngine", usesPath: true},
	"simple":         {name: "haystack.backends.simple_backend.SimpleEngine"},
}

// Engines returns every engine name a URL can resolve to.
func Engines() []string {
	res := make([]string, 0, len(engines))
	for _, e := range engines {
		res = append(res, e.name)
	}
	sort.Strings(res)
	return res
}

// Options is reserved for caster parameters; the search parser has none yet.
type Options struct{}

// Config is a parsed search URL.
type Config struct {
	Scheme    string
	Engine    string
	URL       string
	IndexName string
	Path      string
}

// Parse turns a search URL into a Config.
func Parse(raw string, _ Options) (Config, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	e, ok := engines[u.Scheme]
	if !ok {
		return Config{}, fmt.Errorf("%w %q", ErrUnknownScheme, u.Scheme)
	}

	cfg := Config{Scheme: u.Scheme, Engine: e.name}
	path := strings.TrimPrefix(u.Path, "/")

	if e.usesURL {
		httpURL := url.URL{Scheme: "http", User: u.User, Host: u.Host, Path: u.Path}
		if e.usesIdx {
			path = strings.TrimSuffix(path, "/")
			prefix, index := "", path
			if i := strings.LastIndex(path, "/"); i >= 0 {
				prefix, index = path[:i], path[i+1:]
			}
			cfg.IndexName = index
			httpURL.Path = ""
			if prefix != "" {
				httpURL.Path = "/" + prefix
			}
		}
		cfg.URL = httpURL.String()
	}
	if e.usesPath {
		cfg.Path = path
	}

	return cfg, nil
}

// Settings returns the descriptor with upper-case keys.
func (c Config) Settings() map[string]any {
	res := map[string]any{"ENGINE": c.Engine}
	if c.URL != "" {
		res["URL"] = c.URL
	}
	if c.IndexName != "" {
		res["INDEX_NAME"] = c.IndexName
	}
	if c.Path != "" {
		res["PATH"] = c.Path
	}
	return res
}
