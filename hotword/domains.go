package hotword

import "strings"

// DefaultDomainFile is used for topics missing from the domain table.
const DefaultDomainFile = "general.json"

var domainFiles = map[string]string{
	"technology": "tech.json",
	"tech":       "tech.json",
	"科技":         "tech.json",
	"技术":         "tech.json",
	"business":   "business.json",
	"商业":         "business.json",
	"创业":         "business.json",
	"finance":    "finance.json",
	"财经":         "finance.json",
	"金融":         "finance.json",
	"health":     "health.json",
	"medical":    "health.json",
	"健康":         "health.json",
	"医疗":         "health.json",
	"education":  "education.json",
	"教育":         "education.json",
	"general":    DefaultDomainFile,
}

// DomainFile maps a topic's mainTopic to the term database that serves it.
func DomainFile(mainTopic string) string {
	if f, ok := domainFiles[strings.ToLower(strings.TrimSpace(mainTopic))]; ok {
		return f
	}
	return DefaultDomainFile
}
