package engine

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/trustbyte/phishguard/internal/core"
)

// Pre-compiled patterns for URL extraction and host classification.
var (
	reURL  = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]+`)
	reIPv4 = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)
)

// urlInfo classifies a single extracted URL.
type urlInfo struct {
	raw          string
	isShortened  bool
	isSuspicious bool
}

// analyzeTechnical computes the URL, structure and language-quality
// sections. It never touches the network: URL classification is purely
// lexical so analysis stays offline and deterministic.
func analyzeTechnical(subject, body string, n normalized) core.TechnicalAnalysis {
	urls := extractURLs(n.original)

	suspicious := make([]string, 0, len(urls))
	shortened := make([]string, 0, len(urls))
	for _, u := range urls {
		if u.isSuspicious {
			suspicious = append(suspicious, u.raw)
		}
		if u.isShortened {
			shortened = append(shortened, u.raw)
		}
	}

	exclamations := strings.Count(subject, "!") + strings.Count(body, "!")

	formatting := make([]string, 0, 2)
	if exclamations > 3 {
		formatting = append(formatting, "Excessive exclamation marks")
	}
	if subjectHasAlertLanguage(toLowerASCII(subject)) {
		formatting = append(formatting, "Urgent/alert language in subject")
	}

	return core.TechnicalAnalysis{
		URLsAndLinks: core.URLAnalysis{
			TotalURLs:      len(urls),
			SuspiciousURLs: suspicious,
			ShortenedURLs:  shortened,
			Explanation:    urlExplanation(len(urls), len(suspicious)),
		},
		EmailStructure: core.StructureAnalysis{
			SubjectLength:        len(subject),
			BodyLength:           len(body),
			ExcessivePunctuation: exclamations,
			AllCapsWords:         allCapsWords(n.original),
			SuspiciousFormatting: formatting,
			Explanation:          structureExplanation(len(formatting)),
		},
		LanguageQuality: core.LanguageAnalysis{},
	}
}

// extractURLs scans the original text for http://, https:// and www.
// prefixed tokens. Trailing sentence punctuation is trimmed from each
// token; results are deduplicated in discovery order.
func extractURLs(text string) []urlInfo {
	matches := reURL.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	urls := make([]urlInfo, 0, len(matches))
	for _, m := range matches {
		raw := strings.TrimRight(m, `.,;:!?)>"'`)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true

		host := hostOf(raw)
		isShortened := shortenerDomains[host]
		isSuspicious := isShortened ||
			reIPv4.MatchString(host) ||
			strings.Count(host, ".") > 2 // more than 3 dot-separated labels

		urls = append(urls, urlInfo{
			raw:          raw,
			isShortened:  isShortened,
			isSuspicious: isSuspicious,
		})
	}
	return urls
}

// hostOf extracts the lowercased host portion of an extracted URL token.
func hostOf(raw string) string {
	host := toLowerASCII(raw)
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	// Strip a port if present.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// allCapsWords returns the distinct all-caps word tokens of the text in
// discovery order. A token qualifies when it is at least three letters,
// purely alphabetic, equal to its own uppercase form and not a common
// acronym from the fixed stoplist.
func allCapsWords(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	seen := make(map[string]bool)
	words := make([]string, 0, 4)
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if tok != strings.ToUpper(tok) || tok == strings.ToLower(tok) {
			continue
		}
		if acronymStoplist[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		words = append(words, tok)
	}
	return words
}

// scoreLanguageQuality fills the language-quality section from the
// pattern and punctuation signals. This is a heuristic proxy, not a
// grammar check: the score starts at 100 and is penalized 15 points per
// triggered category and 10 more for excessive punctuation, floored at 0.
func scoreLanguageQuality(patterns core.PatternAnalysis, exclamations int) core.LanguageAnalysis {
	const (
		categoryPenalty    = 15
		punctuationPenalty = 10
	)

	score := 100
	suspicious := make([]string, 0, len(lexicons)+1)

	byCategory := []core.PatternMatch{
		patterns.UrgencyIndicators,
		patterns.AuthorityClaims,
		patterns.FinancialIncentives,
		patterns.ActionRequirements,
		patterns.SocialEngineering,
		patterns.ThreatsAndPressure,
	}
	for i, m := range byCategory {
		if m.Score > 0 {
			score -= categoryPenalty
			suspicious = append(suspicious, lexicons[i].patternLabel)
		}
	}
	if exclamations > 3 {
		score -= punctuationPenalty
		suspicious = append(suspicious, "Excessive punctuation")
	}
	if score < 0 {
		score = 0
	}

	return core.LanguageAnalysis{
		SuspiciousPatterns: suspicious,
		QualityScore:       score,
		Explanation:        "Heuristic estimate from suspicious patterns and punctuation density, not a grammar check",
	}
}

func urlExplanation(total, suspicious int) string {
	switch {
	case total == 0:
		return "No URLs found in the email text"
	case suspicious > 0:
		return "Contains shortened or otherwise suspicious links that may redirect to malicious sites"
	default:
		return "Links present; none match known suspicious patterns"
	}
}

func structureExplanation(flags int) string {
	if flags > 0 {
		return "Formatting shows pressure tactics commonly seen in phishing"
	}
	return "No suspicious formatting detected"
}
