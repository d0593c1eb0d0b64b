package openwebui

// Model is a raw model descriptor as returned by the OpenWebUI listing
// endpoint. The upstream schema drifts between releases, so the descriptor
// stays a loose map with accessors for the handful of keys this server
// interprets. Unknown keys pass through untouched.
type Model map[string]any

// ID returns the model id, or "" when absent or not a string.
func (m Model) ID() string {
	id, _ := m["id"].(string)
	return id
}

// DisplayName returns the model name, falling back to the id.
func (m Model) DisplayName() string {
	if name, ok := m["name"].(string); ok && name != "" {
		return name
	}
	return m.ID()
}

// defaultDescription is returned when a model carries no description.
const defaultDescription = "No description available"

// Description digs out info.meta.description, falling back to a fixed
// placeholder when any level of the nesting is missing.
func (m Model) Description() string {
	info, ok := m["info"].(map[string]any)
	if !ok {
		return defaultDescription
	}
	meta, ok := info["meta"].(map[string]any)
	if !ok {
		return defaultDescription
	}
	if desc, ok := meta["description"].(string); ok && desc != "" {
		return desc
	}
	return defaultDescription
}

// IsWorkspace reports whether the descriptor is a workspace agent. OpenWebUI
// marks those by attaching an "info" object; the value is irrelevant, only
// the key's presence counts.
func (m Model) IsWorkspace() bool {
	_, ok := m["info"]
	return ok
}

// Clone returns a shallow copy of the descriptor, so callers can't mutate a
// cached entry's top-level keys.
func (m Model) Clone() Model {
	out := make(Model, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
