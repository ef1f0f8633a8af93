package session

import "github.com/taskforge/taskforge/internal/llm"

// ProjectForLLM converts the full transcript into provider input. The
// provider protocol has no tool role, so tool entries are remapped to
// user; anything that still isn't user/model after mapping is dropped.
// Recomputed fresh from the accumulated history on every call — never
// cached, so corrective entries appended mid-run are always visible.
func (s *Session) ProjectForLLM() []llm.Content {
	history := s.Snapshot()
	out := make([]llm.Content, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == RoleTool {
			role = RoleUser
		}
		if role != RoleUser && role != RoleModel {
			continue
		}
		out = append(out, llm.TextContent(role, msg.Content))
	}
	return out
}
