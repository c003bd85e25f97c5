package hotword

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

//go:embed terms/*.json
var builtin embed.FS

// BuiltinFS returns the term databases shipped with the binary.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtin, "terms")
	if err != nil {
		panic(err)
	}
	return sub
}

// Term is one domain term with its primary forms and spelling variants.
type Term struct {
	Key      string
	Chinese  string
	English  string
	Variants []string
}

// Ref returns the identity of the term as carried in results.
func (t *Term) Ref() analysis.TermRef {
	return analysis.TermRef{Key: t.Key, Chinese: t.Chinese, English: t.English}
}

func termKey(chinese, english string) string {
	return strings.ToLower(strings.TrimSpace(chinese)) + "|" + strings.ToLower(strings.TrimSpace(english))
}

// Database is an immutable, domain-scoped term list with its compiled patterns.
type Database struct {
	Domain   string
	Version  string
	Terms    []Term
	Patterns []Pattern
}

type fileTerm struct {
	Chinese  string   `json:"chinese,omitempty" yaml:"chinese,omitempty"`
	English  string   `json:"english,omitempty" yaml:"english,omitempty"`
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`
}

type fileDatabase struct {
	Domain  string     `json:"domain" yaml:"domain"`
	Version string     `json:"version" yaml:"version"`
	Terms   []fileTerm `json:"terms" yaml:"terms"`
}

// Parse decodes a term database file. name selects the codec by extension:
// .yaml/.yml use YAML, everything else JSON.
func Parse(name string, data []byte) (*Database, error) {
	var raw fileDatabase
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	db := &Database{Domain: raw.Domain, Version: raw.Version}
	if db.Domain == "" {
		db.Domain = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	seen := make(map[string]bool, len(raw.Terms))
	for _, ft := range raw.Terms {
		zh, en := strings.TrimSpace(ft.Chinese), strings.TrimSpace(ft.English)
		if zh == "" && en == "" {
			continue
		}
		key := termKey(zh, en)
		if seen[key] {
			continue
		}
		seen[key] = true
		db.Terms = append(db.Terms, Term{Key: key, Chinese: zh, English: en, Variants: ft.Variants})
	}
	db.Patterns = Compile(db.Terms)
	return db, nil
}

// Loader reads term databases from a file system and caches them for the
// lifetime of the process. Concurrent first loads of one file share a single read.
type Loader struct {
	fsys  fs.FS
	log   logrus.FieldLogger
	cache sync.Map // file name -> *Database
	group singleflight.Group
}

// NewLoader builds a Loader over fsys. A nil fsys uses the built-in databases.
func NewLoader(fsys fs.FS, log logrus.FieldLogger) *Loader {
	if fsys == nil {
		fsys = BuiltinFS()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{fsys: fsys, log: log}
}

// Load returns the database stored in file. Missing or unparseable files are
// ResourceUnavailable and are not cached.
func (l *Loader) Load(file string) (*Database, error) {
	if db, ok := l.cache.Load(file); ok {
		return db.(*Database), nil
	}

	v, err, _ := l.group.Do(file, func() (any, error) {
		if db, ok := l.cache.Load(file); ok {
			return db, nil
		}
		data, err := fs.ReadFile(l.fsys, file)
		if err != nil {
			return nil, analysis.NewError(analysis.ResourceUnavailable, "hotword.load", err)
		}
		db, err := Parse(file, data)
		if err != nil {
			return nil, analysis.NewError(analysis.ResourceUnavailable, "hotword.load", err)
		}
		l.cache.Store(file, db)
		l.log.WithFields(logrus.Fields{
			"domain":   db.Domain,
			"file":     file,
			"terms":    len(db.Terms),
			"patterns": len(db.Patterns),
		}).Info("hotword: term database loaded")
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Database), nil
}
