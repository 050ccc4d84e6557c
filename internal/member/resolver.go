// Package member maps opaque chat-platform member ids to display names.
package member

// Resolver looks up display names in a static table loaded from config.
// Resolution is total: an unmapped id gets a deterministic fallback name
// derived from its tail, so the same id always renders the same way.
type Resolver struct {
	names map[string]string
}

func NewResolver(names map[string]string) *Resolver {
	m := make(map[string]string, len(names))
	for id, name := range names {
		m[id] = name
	}
	return &Resolver{names: m}
}

// Resolve returns the configured display name for id, or the fallback.
func (r *Resolver) Resolve(id string) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return fallbackName(id)
}

// fallbackName keeps the last 8 characters of the id so two unmapped
// members very rarely collide.
func fallbackName(id string) string {
	tail := []rune(id)
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "成員" + string(tail)
}
