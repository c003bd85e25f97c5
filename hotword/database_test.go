package hotword

import (
	"errors"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// countingFS records how many times each file is opened.
type countingFS struct {
	fsys fs.FS

	mu    sync.Mutex
	opens map[string]int
}

func newCountingFS(fsys fs.FS) *countingFS {
	return &countingFS{fsys: fsys, opens: make(map[string]int)}
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.fsys.Open(name)
}

func (c *countingFS) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

const techJSON = `{
  "domain": "technology",
  "version": "1.0",
  "terms": [
    {"chinese": "人工智能", "english": "AI"},
    {"english": "AIGC", "variants": ["Generative AI"]},
    {"chinese": "人工智能", "english": "ai"},
    {}
  ]
}`

func TestLoader_LoadIsIdempotent(t *testing.T) {
	cfs := newCountingFS(fstest.MapFS{"tech.json": {Data: []byte(techJSON)}})
	l := NewLoader(cfs, nil)

	first, err := l.Load("tech.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := l.Load("tech.json")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("expected the cached database to be returned")
	}
	if n := cfs.count("tech.json"); n != 1 {
		t.Errorf("file opened %d times, want 1", n)
	}
	if len(first.Terms) != 2 {
		t.Errorf("terms = %d, want 2 (duplicate key and empty term dropped)", len(first.Terms))
	}
	if first.Domain != "technology" || first.Version != "1.0" {
		t.Errorf("domain/version = %q/%q", first.Domain, first.Version)
	}
}

func TestLoader_ConcurrentFirstLoadReadsOnce(t *testing.T) {
	cfs := newCountingFS(fstest.MapFS{"tech.json": {Data: []byte(techJSON)}})
	l := NewLoader(cfs, nil)

	var wg sync.WaitGroup
	dbs := make([]*Database, 16)
	for i := range dbs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dbs[i], _ = l.Load("tech.json")
		}(i)
	}
	wg.Wait()

	for i, db := range dbs {
		if db == nil || db != dbs[0] {
			t.Fatalf("loader %d returned a different database", i)
		}
	}
	if n := cfs.count("tech.json"); n != 1 {
		t.Errorf("file opened %d times, want 1", n)
	}
}

func TestLoader_MissingAndBrokenFiles(t *testing.T) {
	l := NewLoader(fstest.MapFS{"broken.json": {Data: []byte(`{"terms": [`)}}, nil)

	for _, file := range []string{"missing.json", "broken.json"} {
		_, err := l.Load(file)
		if !errors.Is(err, analysis.ErrResourceUnavailable) {
			t.Errorf("%s: expected ErrResourceUnavailable, got %v", file, err)
		}
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
domain: finance
version: "2"
terms:
  - chinese: 通货膨胀
    english: Inflation
    variants: [通胀]
`)
	db, err := Parse("finance.yaml", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(db.Terms) != 1 || len(db.Patterns) != 3 {
		t.Fatalf("terms=%d patterns=%d", len(db.Terms), len(db.Patterns))
	}
}

func TestBuiltinDatabasesLoad(t *testing.T) {
	l := NewLoader(nil, nil)
	files := map[string]bool{DefaultDomainFile: true}
	for _, f := range domainFiles {
		files[f] = true
	}
	for f := range files {
		db, err := l.Load(f)
		if err != nil {
			t.Errorf("%s: %v", f, err)
			continue
		}
		if len(db.Terms) == 0 {
			t.Errorf("%s: no terms", f)
		}
	}
}

func TestDomainFile(t *testing.T) {
	tests := map[string]string{
		"Technology": "tech.json",
		" 科技 ":       "tech.json",
		"finance":    "finance.json",
		"cooking":    DefaultDomainFile,
		"":           DefaultDomainFile,
	}
	for topic, want := range tests {
		if got := DomainFile(topic); got != want {
			t.Errorf("DomainFile(%q) = %q, want %q", topic, got, want)
		}
	}
}

func TestMatcher_BestEffort(t *testing.T) {
	m := NewMatcher(NewLoader(fstest.MapFS{}, nil), nil)
	res := m.MatchTranscript("technology", []analysis.Segment{{Start: 0, End: 1, Text: "AI"}})
	if len(res.Matches) != 0 || res.Summary.TotalMatches != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}

	m = NewMatcher(NewLoader(nil, nil), nil)
	res = m.MatchTranscript("technology", []analysis.Segment{{Start: 0, End: 1, Text: "我们聊聊大语言模型和 LLM"}})
	if res.Domain != "technology" || res.Summary.TotalMatches != 2 || res.Summary.UniqueTermCount != 1 {
		t.Errorf("unexpected summary: %+v", res.Summary)
	}
}
