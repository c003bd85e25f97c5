package hotword

import (
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Result is the output of matching one transcript.
type Result struct {
	Domain  string
	Matches []Match
	Summary analysis.HotwordSummary
}

// Matcher resolves a topic to its term database and matches transcripts
// against it. Matching is best-effort: a database that cannot be loaded
// yields an empty result, never an error.
type Matcher struct {
	loader *Loader
	log    logrus.FieldLogger
}

// NewMatcher builds a Matcher over loader.
func NewMatcher(loader *Loader, log logrus.FieldLogger) *Matcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Matcher{loader: loader, log: log}
}

// MatchTranscript matches segs against the database serving mainTopic.
func (m *Matcher) MatchTranscript(mainTopic string, segs []analysis.Segment) Result {
	file := DomainFile(mainTopic)
	db, err := m.loader.Load(file)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"topic": mainTopic,
			"file":  file,
			"error": err,
		}).Warn("hotword: term database unavailable, matching skipped")
		return Result{Summary: Summarize("", nil)}
	}

	matches := MatchSegments(db, segs)
	return Result{
		Domain:  db.Domain,
		Matches: matches,
		Summary: Summarize(db.Domain, matches),
	}
}
