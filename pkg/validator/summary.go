// pkg/validator/summary.go
package validator

import (
	"regexp"
	"sort"
)

// ErrorFrequency is one entry of the most-common-errors ranking.
type ErrorFrequency struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

// Summary aggregates everything the validator has logged during a run.
type Summary struct {
	TotalErrors    int              `json:"total_errors"`
	ErrorsBySource map[string]int   `json:"errors_by_source"`
	CommonErrors   []ErrorFrequency `json:"common_errors"`
}

// maxCommonErrors caps the most-frequent-errors ranking.
const maxCommonErrors = 10

var rowPrefix = regexp.MustCompile(`^Row \d+: `)

// Summary returns a snapshot of the accumulated validation log: the total
// issue count, counts grouped by source, and the ten most frequent issue
// messages with row positions stripped so identical causes group together.
func (v *Validator) Summary() Summary {
	v.mu.Lock()
	defer v.mu.Unlock()

	summary := Summary{
		ErrorsBySource: make(map[string]int),
		CommonErrors:   make([]ErrorFrequency, 0),
	}

	freq := make(map[string]int)
	for source, issues := range v.issuesBySource {
		summary.ErrorsBySource[source] = len(issues)
		summary.TotalErrors += len(issues)
		for _, issue := range issues {
			freq[rowPrefix.ReplaceAllString(issue, "")]++
		}
	}

	for msg, count := range freq {
		summary.CommonErrors = append(summary.CommonErrors, ErrorFrequency{Error: msg, Count: count})
	}
	sort.Slice(summary.CommonErrors, func(i, j int) bool {
		if summary.CommonErrors[i].Count != summary.CommonErrors[j].Count {
			return summary.CommonErrors[i].Count > summary.CommonErrors[j].Count
		}
		return summary.CommonErrors[i].Error < summary.CommonErrors[j].Error
	})
	if len(summary.CommonErrors) > maxCommonErrors {
		summary.CommonErrors = summary.CommonErrors[:maxCommonErrors]
	}

	return summary
}
