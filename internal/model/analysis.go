package model

import (
	"strconv"
	"strings"
)

// AttackMethod is the attribution verdict for an article
type AttackMethod string

const (
	AttackDirect  AttackMethod = "direct"  // State actor named in the text
	AttackProxy   AttackMethod = "proxy"   // Intermediary or criminal actor named in the text
	AttackUnknown AttackMethod = "unknown" // Neither side outweighs the other
)

// ParseAttackMethod maps a stored verdict back to an AttackMethod.
// Anything other than direct or proxy is unknown.
func ParseAttackMethod(s string) AttackMethod {
	switch AttackMethod(strings.ToLower(strings.TrimSpace(s))) {
	case AttackDirect:
		return AttackDirect
	case AttackProxy:
		return AttackProxy
	default:
		return AttackUnknown
	}
}

// Analysis is the result of one classification pass over one text body
type Analysis struct {
	Industries      []string       `json:"industries"`               // Industry labels in taxonomy order
	Countries       []string       `json:"countries"`                // Canonical country names in discovery order
	CountryMentions map[string]int `json:"country_mentions"`         // Canonical name -> raw token occurrences
	AttackMethod    AttackMethod   `json:"attack_method"`            // direct, proxy or unknown
	KeywordCounts   map[string]int `json:"keyword_counts,omitempty"` // Taxonomy keyword -> word-bounded occurrences
}

// MentionsList renders country mentions as "Name: count" pairs in country order
func (a Analysis) MentionsList() []string {
	out := make([]string, 0, len(a.Countries))
	for _, c := range a.Countries {
		out = append(out, c+": "+strconv.Itoa(a.CountryMentions[c]))
	}
	return out
}
