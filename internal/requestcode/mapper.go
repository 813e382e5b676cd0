// Package requestcode translates between (account action, target system)
// pairs and the short BACHelp request-type codes used on audit reports.
package requestcode

import "sort"

// systemActions pins the default table in document order. Reverse lookups
// resolve code collisions by first occurrence, so the scan order of this
// table is part of the mapper's contract.
type systemActions struct {
	system  string
	actions []actionCode
}

type actionCode struct {
	action string
	code   string
}

// defaultMappings is the BACHelp request type definition chart.
var defaultMappings = []systemActions{
	{"Oracle / SFMS", []actionCode{
		{"Add", "USRA"},
		{"Delete", "USRI"},
		{"Update Account & Privileges", "USRU"},
		{"Update Privileges Only", "USRU"},
		{"Update Account Only", "USRU"},
	}},
	{"AIX", []actionCode{
		{"Add", "AIXA"},
		{"Delete", "AIXI"},
		{"Update Account & Privileges", "AIXU"},
		{"Update Privileges Only", "AIXU"},
		{"Update Account Only", "AIXU"},
	}},
	{"SFS", []actionCode{
		{"Add", "SFSA"},
		{"Delete", "SFSI"},
		{"Update Account & Privileges", "SFSU"},
		{"Update Privileges Only", "SFSU"},
		{"Update Account Only", "SFSU"},
	}},
	{"NYSDS", []actionCode{
		{"Add", "DSA"},
		{"Delete", "DSI"},
		{"Update Account & Privileges", "DSU"},
		{"Update Privileges Only", "DSU"},
		{"Update Account Only", "DSU"},
	}},
	{"PayServ", []actionCode{
		{"Add", "PYSA"},
		{"Delete", "PYSI"},
		{"Update Account & Privileges", "PYSU"},
		{"Update Privileges Only", "PYSU"},
		{"Update Account Only", "PYSU"},
	}},
	// OGS Swiper Access only supports Add and Delete.
	{"OGS Swiper Access", []actionCode{
		{"Add", "CTRA"},
		{"Delete", "CTRI"},
	}},
}

// CodeFields is the reverse-lookup result for a request code.
type CodeFields struct {
	AccountAction string
	TargetSystem  string
}

// Mapper provides bidirectional request-code translation over the default
// table deep-merged with operator overrides. Immutable after construction.
type Mapper struct {
	forward map[string]map[string]string
	reverse map[string]CodeFields
}

// New builds a Mapper. Overrides are keyed system -> action -> code; an
// override entry replaces the same-keyed default, and non-overlapping
// entries from both sides are kept.
func New(overrides map[string]map[string]string) *Mapper {
	merged := mergeDefaults(overrides)

	forward := make(map[string]map[string]string, len(merged))
	reverse := make(map[string]CodeFields)
	for _, sys := range merged {
		actions := make(map[string]string, len(sys.actions))
		for _, ac := range sys.actions {
			actions[ac.action] = ac.code
			// First occurrence wins when two mappings share a code.
			if _, exists := reverse[ac.code]; !exists {
				reverse[ac.code] = CodeFields{AccountAction: ac.action, TargetSystem: sys.system}
			}
		}
		forward[sys.system] = actions
	}
	return &Mapper{forward: forward, reverse: reverse}
}

// mergeDefaults deep-merges overrides into the default table while keeping
// document order for default entries. Override-only systems and actions are
// appended in sorted order so the merged table stays deterministic.
func mergeDefaults(overrides map[string]map[string]string) []systemActions {
	merged := make([]systemActions, 0, len(defaultMappings)+len(overrides))
	seenSystems := make(map[string]bool, len(defaultMappings))

	for _, sys := range defaultMappings {
		seenSystems[sys.system] = true
		override := overrides[sys.system]
		actions := make([]actionCode, 0, len(sys.actions))
		seenActions := make(map[string]bool, len(sys.actions))
		for _, ac := range sys.actions {
			seenActions[ac.action] = true
			code := ac.code
			if replacement, ok := override[ac.action]; ok {
				code = replacement
			}
			actions = append(actions, actionCode{action: ac.action, code: code})
		}
		for _, action := range sortedKeys(override) {
			if !seenActions[action] {
				actions = append(actions, actionCode{action: action, code: override[action]})
			}
		}
		merged = append(merged, systemActions{system: sys.system, actions: actions})
	}

	for _, system := range sortedKeys(overrides) {
		if seenSystems[system] {
			continue
		}
		override := overrides[system]
		actions := make([]actionCode, 0, len(override))
		for _, action := range sortedKeys(override) {
			actions = append(actions, actionCode{action: action, code: override[action]})
		}
		merged = append(merged, systemActions{system: system, actions: actions})
	}
	return merged
}

// GetRequestCode returns the code for an (action, system) pair, or "" when
// either input is blank or no mapping exists. Absence is a valid result,
// not an error.
func (m *Mapper) GetRequestCode(accountAction, targetSystem string) string {
	if accountAction == "" || targetSystem == "" {
		return ""
	}
	return m.forward[targetSystem][accountAction]
}

// FieldsFromCode resolves a request code back to its (action, system) pair,
// or nil when the code is blank or unmapped.
func (m *Mapper) FieldsFromCode(code string) *CodeFields {
	if code == "" {
		return nil
	}
	cf, ok := m.reverse[code]
	if !ok {
		return nil
	}
	return &cf
}

// AllCodes returns every request code in the merged table, sorted.
func (m *Mapper) AllCodes() []string {
	return sortedKeys(m.reverse)
}

// AllTargetSystems returns every target system in the merged table, sorted.
func (m *Mapper) AllTargetSystems() []string {
	return sortedKeys(m.forward)
}

// ActionsForSystem returns the account actions mapped for a target system,
// sorted. Unknown or blank systems yield an empty slice.
func (m *Mapper) ActionsForSystem(targetSystem string) []string {
	if targetSystem == "" {
		return []string{}
	}
	actions := m.forward[targetSystem]
	if len(actions) == 0 {
		return []string{}
	}
	return sortedKeys(actions)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
