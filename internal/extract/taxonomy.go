package extract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Industry is one taxonomy entry: a label and the phrases that imply it
type Industry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy maps free text to industry labels by keyword containment.
// It is read-only after construction and safe for concurrent use.
type Taxonomy struct {
	industries []Industry
	keywords   []string // every distinct keyword, in taxonomy order
}

// NewTaxonomy builds a taxonomy from industries in the given order.
// Keywords are lower-cased and trimmed; blanks and repeats within an
// industry are dropped, as are industries left without keywords.
func NewTaxonomy(industries []Industry) *Taxonomy {
	t := &Taxonomy{}
	seenKeyword := make(map[string]bool)
	seenIndustry := make(map[string]bool)

	for _, ind := range industries {
		name := strings.TrimSpace(ind.Name)
		if name == "" || seenIndustry[name] {
			continue
		}

		var keywords []string
		local := make(map[string]bool)
		for _, kw := range ind.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || local[kw] {
				continue
			}
			local[kw] = true
			keywords = append(keywords, kw)

			if !seenKeyword[kw] {
				seenKeyword[kw] = true
				t.keywords = append(t.keywords, kw)
			}
		}

		if len(keywords) == 0 {
			continue
		}
		seenIndustry[name] = true
		t.industries = append(t.industries, Industry{Name: name, Keywords: keywords})
	}

	return t
}

// DefaultTaxonomy returns the built-in critical-infrastructure taxonomy
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(defaultIndustries)
}

// LoadTaxonomy reads a YAML list of {name, keywords} entries
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}

	var industries []Industry
	if err := yaml.Unmarshal(data, &industries); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}

	t := NewTaxonomy(industries)
	if len(t.industries) == 0 {
		return nil, fmt.Errorf("taxonomy %s defines no industries", path)
	}

	return t, nil
}

// Classify returns the industries implicated by text, in taxonomy order.
// Matching is plain substring containment, so "plant" also hits "implants".
func (t *Taxonomy) Classify(text string) []string {
	found := []string{}
	if text == "" {
		return found
	}

	lower := strings.ToLower(text)
	for _, ind := range t.industries {
		for _, kw := range ind.Keywords {
			if strings.Contains(lower, kw) {
				found = append(found, ind.Name)
				break // One label per industry
			}
		}
	}

	return found
}

// Industries returns the industry labels in taxonomy order
func (t *Taxonomy) Industries() []string {
	names := make([]string, len(t.industries))
	for i, ind := range t.industries {
		names[i] = ind.Name
	}
	return names
}

// Entries returns a copy of the taxonomy entries
func (t *Taxonomy) Entries() []Industry {
	out := make([]Industry, len(t.industries))
	for i, ind := range t.industries {
		out[i] = Industry{Name: ind.Name, Keywords: append([]string(nil), ind.Keywords...)}
	}
	return out
}

// KeywordIncidence counts word-bounded occurrences of every distinct taxonomy
// keyword in text. Keywords listed under several industries are counted once.
func (t *Taxonomy) KeywordIncidence(text string) map[string]int {
	counts := make(map[string]int)
	if text == "" {
		return counts
	}

	lower := strings.ToLower(text)
	for _, kw := range t.keywords {
		if n := countBounded(lower, kw); n > 0 {
			counts[kw] = n
		}
	}

	return counts
}

var defaultIndustries = []Industry{
	{
		Name: "energy",
		Keywords: []string{
			"power grid", "electricity transmission", "high voltage substation", "transformer",
			"switchgear", "grid operator", "power plant", "gas-fired plant", "substation",
			"nuclear plant", "hydropower dam", "wind farm", "solar farm",
			"gas pipeline", "compressor station", "LNG terminal", "oil refinery",
			"fuel depot", "storage tank", "pumping station", "heating", "blackout",
			"grid failure", "SCADA", "ICS", "power outage",
		},
	},
	{
		Name: "transportation",
		Keywords: []string{
			"railway", "rail line", "freight train", "rail yard", "marshalling yard",
			"rail signalling", "signal box", "switch points", "interlocking", "derailment",
			"derailed", "track", "bridge", "tunnel", "pier", "terminal", "port",
			"container terminal", "logistics hub", "distribution hub", "fuel pipeline",
			"airport", "runway", "air traffic control", "depot", "track section",
		},
	},
	{
		Name: "telecommunications",
		Keywords: []string{
			"telecom exchange", "telephone exchange", "mobile network", "cell tower",
			"base station", "core network", "network operations centre", "data centre",
			"fiber-optic cable", "fibre-optic cable", "undersea cable", "subsea cable",
			"submarine cable", "cable landing station", "backbone network", "microwave link",
			"satellite link", "routing outage", "BGP hijack", "cable cut",
			"network disruption", "anchor",
		},
	},
	{
		Name: "finance",
		Keywords: []string{
			"bank", "central bank", "payment system", "SWIFT", "SEPA", "clearing house",
			"ATM network", "cash-in-transit", "bank branch", "vault", "financial regulator",
			"sanctions enforcement", "sanctions evasion", "money laundering",
			"financial cyberattack", "extortion", "ransomware", "ransom payment",
			"crypto exchange", "illicit finance",
		},
	},
	{
		Name: "healthcare",
		Keywords: []string{
			"hospital", "medical centre", "emergency department", "ambulance service",
			"medical supply depot", "pharmaceutical plant", "vaccine facility", "laboratory",
			"pathology lab", "biomedical facility", "oxygen supply", "medical gas",
			"power outage hospital", "backup generator failure", "hospital ransomware",
			"health data breach", "medical logistics", "cold chain disruption",
			"water contamination", "fire evacuation", "security incident",
		},
	},
	{
		Name: "defense",
		Keywords: []string{
			"military base", "airbase", "naval base", "barracks", "munitions depot",
			"ammo depot", "weapons storage", "fuel depot", "jet fuel", "military logistics",
			"weapons shipment", "military convoy", "rail transport military", "radar site",
			"air defence", "missile system", "drone", "UAV", "military aircraft",
			"arms factory", "restricted area", "secure facility", "perimeter breach",
			"explosive device", "military attack",
		},
	},
	{
		Name: "cybersecurity",
		Keywords: []string{
			"cyber sabotage", "malware", "ransomware", "DDoS", "network intrusion",
			"unauthorized access", "OT compromise", "ICS compromise", "SCADA breach",
			"industrial control system", "PLC manipulation", "remote access trojan",
			"command and control", "APT", "state-sponsored", "cyber espionage",
			"cyber disruption", "satellite communications attack", "router compromise",
			"telecom network intrusion", "cyberattack", "cyber attack", "system outage",
		},
	},
	{
		Name: "manufacturing",
		Keywords: []string{
			"factory", "production facility", "industrial site", "petrochemical", "plant",
			"production halt",
		},
	},
	{
		Name: "government",
		Keywords: []string{
			"government building", "ministry", "office", "recruitment office",
			"recruitment centre", "state agency", "regulatory authority", "municipal building",
			"city hall", "prefecture", "embassy", "consulate", "border police", "border guard",
			"customs service", "civil protection", "emergency management",
			"critical infrastructure authority", "classified facility", "secure compound",
		},
	},
}
