// Package pdl implements the prompt description language of spec §4.H:
// a plain-text turn format ("<|system|>", "<|user|>", "<|assistant|>",
// "<|schema|>") with inline media blocks and {{var}} substitution,
// parsed into a role-tagged message list an LLM provider can send
// directly.
package pdl

// Role is the speaker of one message turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleReasoning Role = "reasoning"
)

// pdlRole additionally tracks the "schema" turn marker, which never
// becomes a Message: it's consumed into Pdl.Schema instead.
type pdlRole string

const (
	pdlRoleSystem    pdlRole = "system"
	pdlRoleUser      pdlRole = "user"
	pdlRoleAssistant pdlRole = "assistant"
	pdlRoleReasoning pdlRole = "reasoning"
	pdlRoleSchema    pdlRole = "schema"
)

func (r pdlRole) toRole() Role {
	switch r {
	case pdlRoleUser:
		return RoleUser
	case pdlRoleAssistant:
		return RoleAssistant
	case pdlRoleReasoning:
		return RoleReasoning
	default:
		return RoleSystem
	}
}
