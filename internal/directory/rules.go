package directory

import "github.com/soyeahso/mcp-openwebui/internal/openwebui"

// Rules holds the optional whitelist and blacklist of agent ids. Both are
// fixed at startup; a nil/empty list means no restriction on that side.
type Rules struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewRules builds filter rules from id lists as they appear in config.
func NewRules(whitelist, blacklist []string) Rules {
	return Rules{
		whitelist: toSet(whitelist),
		blacklist: toSet(blacklist),
	}
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Allows reports whether an agent id passes the rules. Empty ids never pass.
// The blacklist is checked first and cannot be overridden by whitelist
// membership; with no whitelist configured, every non-blacklisted id passes.
func (r Rules) Allows(id string) bool {
	if id == "" {
		return false
	}
	if _, banned := r.blacklist[id]; banned {
		return false
	}
	if len(r.whitelist) > 0 {
		_, ok := r.whitelist[id]
		return ok
	}
	return true
}

// filterWorkspace keeps only descriptors carrying the workspace marker,
// preserving upstream order.
func filterWorkspace(models []openwebui.Model) []openwebui.Model {
	out := make([]openwebui.Model, 0, len(models))
	for _, m := range models {
		if m.IsWorkspace() {
			out = append(out, m)
		}
	}
	return out
}

// Apply drops descriptors whose id is missing or rejected by the rules,
// preserving upstream order.
func (r Rules) Apply(models []openwebui.Model) []openwebui.Model {
	out := make([]openwebui.Model, 0, len(models))
	for _, m := range models {
		if r.Allows(m.ID()) {
			out = append(out, m)
		}
	}
	return out
}
