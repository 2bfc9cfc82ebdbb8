package answer

import (
	"regexp"
	"strings"
)

// DefaultOptions are the multiple-choice letters recognized by extraction.
var DefaultOptions = []string{"A", "B", "C", "D"}

// Direct answer phrasings, checked first; the first match wins.
var directPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:the\s+)?answer\s+is\s+([A-D])`),
	regexp.MustCompile(`(?i)answer\s*:\s*([A-D])`),
	regexp.MustCompile(`(?i)(?:option\s+)?([A-D])\s+is\s+(?:the\s+)?correct`),
	regexp.MustCompile(`(?i)correct\s+(?:answer\s+is\s+)?(?:option\s+)?([A-D])`),
	regexp.MustCompile(`(?i)therefore[,\s]*(?:the\s+answer\s+is\s+)?([A-D])`),
	regexp.MustCompile(`(?i)so[,\s]*(?:the\s+answer\s+is\s+)?([A-D])`),
	regexp.MustCompile(`(?i)thus[,\s]*(?:the\s+answer\s+is\s+)?([A-D])`),
}

// Isolated option mentions; the last match is taken as the final answer.
var isolatedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b([A-D])\)`),
	regexp.MustCompile(`(?i)\(([A-D])\)`),
	regexp.MustCompile(`(?i)\b([A-D])\.`),
	regexp.MustCompile(`(?i)option\s+([A-D])`),
}

var (
	endPattern   = regexp.MustCompile(`(?i)\b([A-D])\s*$`)
	startPattern = regexp.MustCompile(`(?i)^([A-D])\b`)
	wordPattern  = map[string]*regexp.Regexp{}
)

func init() {
	for _, option := range DefaultOptions {
		wordPattern[option] = regexp.MustCompile(`(?i)\b` + option + `\b`)
	}
}

// Extract pulls a multiple-choice answer letter out of a model response
// using rule-based pattern matching. It returns false when no clear answer
// is found; an ambiguous response is never guessed at.
func Extract(response string) (string, bool) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", false
	}

	for _, pattern := range directPatterns {
		if match := pattern.FindStringSubmatch(response); match != nil {
			return strings.ToUpper(match[1]), true
		}
	}

	for _, pattern := range isolatedPatterns {
		matches := pattern.FindAllStringSubmatch(response, -1)
		if len(matches) > 0 {
			return strings.ToUpper(matches[len(matches)-1][1]), true
		}
	}

	if match := endPattern.FindStringSubmatch(response); match != nil {
		return strings.ToUpper(match[1]), true
	}
	if match := startPattern.FindStringSubmatch(response); match != nil {
		return strings.ToUpper(match[1]), true
	}

	// Frequency fallback: a single option mentioned strictly more often
	// than every other is taken as the answer.
	maxCount := 0
	leaders := []string{}
	for _, option := range DefaultOptions {
		count := len(wordPattern[option].FindAllString(response, -1))
		switch {
		case count > maxCount:
			maxCount = count
			leaders = []string{option}
		case count == maxCount && count > 0:
			leaders = append(leaders, option)
		}
	}
	if maxCount > 0 && len(leaders) == 1 {
		return leaders[0], true
	}
	return "", false
}
