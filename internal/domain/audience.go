package domain

import (
	"sort"
	"strings"
)

// ParseAudience extracts the tag list from an event's "(a, b)" tags field.
// Empty items are dropped and tags are lower-cased.
func ParseAudience(field string) []string {
	s := strings.TrimSpace(field)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveAudience returns the IDs of profiles holding any of tags, each once,
// in ascending order.
func ResolveAudience(profiles []*Profile, tags []string) []UserID {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want[t] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}

	seen := make(map[UserID]struct{})
	var out []UserID
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := want[strings.ToLower(t)]; ok {
				seen[p.ID] = struct{}{}
				out = append(out, p.ID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
