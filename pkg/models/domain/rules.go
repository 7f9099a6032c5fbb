package domain

// RuleTable is the read-only lookup of priority rules keyed by exact control title
type RuleTable struct {
	rules map[string]PriorityRule
}

// NewRuleTable indexes rules by control title. When a title repeats, the first rule wins.
func NewRuleTable(rules []PriorityRule) RuleTable {
	t := RuleTable{rules: make(map[string]PriorityRule, len(rules))}
	for _, r := range rules {
		if _, exists := t.rules[r.ControlTitle]; exists {
			continue
		}
		t.rules[r.ControlTitle] = r
	}
	return t
}

// Lookup finds the rule for an already normalized control title
func (t RuleTable) Lookup(controlTitle string) (PriorityRule, bool) {
	r, ok := t.rules[controlTitle]
	return r, ok
}

// Len returns the number of distinct control titles
func (t RuleTable) Len() int {
	return len(t.rules)
}
