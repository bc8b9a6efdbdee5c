// Package engine implements the deterministic phishing-risk scoring
// engine. The whole package is pure: no I/O, no network, no randomness.
// All lexicons and stoplists below are process-wide constants, frozen at
// init and never mutated, so analyses can run concurrently without
// coordination.
package engine

// category identifies one of the six fixed risk categories.
type category int

const (
	categoryUrgency category = iota
	categoryAuthority
	categoryFinancial
	categoryAction
	categorySocial
	categoryThreats
)

// lexicon is a named, ordered set of trigger phrases for one category.
// Phrase order is significant: patterns_found lists matches in
// declaration order. All phrases are lowercase; matching is literal
// substring containment against the lowercased text.
type lexicon struct {
	cat         category
	phrases     []string
	explanation string
	// patternLabel names the category in language-quality output.
	patternLabel string
}

var lexicons = []lexicon{
	{
		cat: categoryUrgency,
		phrases: []string{
			"urgent",
			"immediately",
			"asap",
			"right now",
			"act now",
			"limited time",
		},
		explanation:  "Urgency language pressures recipients into acting before thinking",
		patternLabel: "Urgency language",
	},
	{
		cat: categoryAuthority,
		phrases: []string{
			"verify",
			"confirm",
			"update",
			"validate",
			"security alert",
			"account locked",
		},
		explanation:  "Authority language imitates trusted institutions to lower suspicion",
		patternLabel: "Authority claims",
	},
	{
		cat: categoryFinancial,
		phrases: []string{
			"free money",
			"prize",
			"winner",
			"congratulations",
			"lottery",
		},
		explanation:  "Unsolicited financial offers bait recipients into handing over details",
		patternLabel: "Financial bait",
	},
	{
		cat: categoryAction,
		phrases: []string{
			"click here",
			"click now",
			"verify now",
			"reset password",
		},
		explanation:  "Demands for immediate action steer recipients toward attacker-controlled links",
		patternLabel: "Action demands",
	},
	{
		cat: categorySocial,
		phrases: []string{
			"valued customer",
			"dear customer",
			"as a token of appreciation",
			"carefully selected",
		},
		explanation:  "Trust-building flattery is used to establish false rapport",
		patternLabel: "Social engineering",
	},
	{
		cat: categoryThreats,
		phrases: []string{
			"account will be closed",
			"permanent suspension",
			"permanently closed",
			"legal action",
			"suspended",
		},
		explanation:  "Threats and pressure tactics coerce compliance through fear",
		patternLabel: "Threats and pressure",
	},
}

// shortenerDomains is the fixed allowlist of known link-shortener hosts.
// Classification is purely lexical; no DNS resolution is ever performed.
var shortenerDomains = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"t.co":        true,
	"ow.ly":       true,
	"is.gd":       true,
}

// acronymStoplist holds common acronyms excluded from all-caps detection.
// The list is fixed; extending it changes structural scoring for every
// caller and must be treated as a behavior change.
var acronymStoplist = map[string]bool{
	"AI":  true,
	"US":  true,
	"FAQ": true,
	"CEO": true,
	"PDF": true,
	"URL": true,
	"USA": true,
	"USD": true,
	"VIP": true,
	"PIN": true,
}
