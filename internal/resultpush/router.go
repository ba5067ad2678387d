package resultpush

import "strings"

type Router struct{}

// MatchTargets returns the enabled targets whose allowlist admits the
// event. An empty allowlist admits everything.
func (r Router) MatchTargets(targets []PushTarget, eventType string) []PushTarget {
	if len(targets) == 0 {
		return nil
	}
	out := make([]PushTarget, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if !eventAllowed(target.EventAllowlist, eventType) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func eventAllowed(allowlist []string, evType string) bool {
	if len(allowlist) == 0 {
		return true
	}
	evType = strings.ToLower(strings.TrimSpace(evType))
	for _, v := range allowlist {
		if v == "" {
			continue
		}
		if strings.ToLower(strings.TrimSpace(v)) == evType {
			return true
		}
	}
	return false
}
