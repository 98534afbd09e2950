package pdl

import (
	"errors"

	"github.com/ragit-kb/ragit/internal/schema"
)

// Pdl is a fully parsed prompt: an optional output schema plus the
// ordered list of conversation turns to send to an LLM provider.
type Pdl struct {
	Schema   *schema.Schema
	Messages []Message
}

// ErrEmpty is returned by Validate when a prompt has no turns at all.
var ErrEmpty = errors.New("pdl: prompt has no messages")

// ErrRoleMissing is returned in strict mode when a content block appears
// before any turn marker has been seen.
var ErrRoleMissing = errors.New("pdl: content appears before any role marker")

// invalidPdlError reports a structural violation of the turn-ordering
// rules (spec §4.H: no consecutive same-role turns, system-first, no
// trailing assistant turn).
type invalidPdlError struct{ msg string }

func (e *invalidPdlError) Error() string { return e.msg }

func invalidPdl(msg string) error { return &invalidPdlError{msg} }

// Validate checks the turn-ordering invariants spec §4.H requires:
// system (if present) must be the first turn, user and assistant turns
// must alternate, and the conversation must not end on an assistant turn
// (that would leave nothing for the LLM to respond to).
func (p Pdl) Validate() error {
	if len(p.Messages) == 0 {
		return ErrEmpty
	}

	afterUser := false
	afterAssistant := false

	for i, m := range p.Messages {
		switch m.Role {
		case RoleUser:
			if afterUser {
				return invalidPdl("<|user|> appeared twice in a row.")
			}
			afterUser = true
			afterAssistant = false
		case RoleAssistant:
			if afterAssistant {
				return invalidPdl("<|assistant|> appeared twice in a row.")
			}
			afterUser = false
			afterAssistant = true
		case RoleSystem:
			if i != 0 {
				return invalidPdl("<|system|> must appear at top.")
			}
		case RoleReasoning:
			// reasoning turns carry no ordering constraint; they're
			// stripped from the context sent to the LLM provider.
		}
	}

	if p.Messages[len(p.Messages)-1].Role == RoleAssistant {
		return invalidPdl("A pdl file ends with <|assistant|>.")
	}

	return nil
}
