package pdl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ragit-kb/ragit/internal/schema"
)

var (
	mediaRe    = regexp.MustCompile(`^media\((.+)\)$`)
	rawMediaRe = regexp.MustCompile(`^raw_media\(([a-zA-Z0-9]+):([^:]+)\)$`)
	varRe      = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
)

// Substitute replaces every {{var}} placeholder in s with vars[var],
// leaving unknown placeholders untouched — a deliberately small subset
// of a full template engine, since PDL only ever substitutes bare
// identifiers (spec §4.H).
func Substitute(s string, vars map[string]string) string {
	return varRe.ReplaceAllStringFunc(s, func(m string) string {
		name := varRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// EscapeTokens escapes literal "&" and "<|" so template output can't be
// misread as PDL turn syntax.
func EscapeTokens(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, "<|", "&lt;|")
}

// UnescapeTokens reverses EscapeTokens.
func UnescapeTokens(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	return strings.ReplaceAll(s, "&amp;", "&")
}

// Parse segments raw PDL source into a Pdl: substituting {{var}}
// placeholders, splitting on "<|role|>" turn markers, and decoding
// inline media blocks within each turn's content. In strict mode,
// malformed turns and markers become errors instead of being carried
// through as plain text, and the result is run through Validate.
func Parse(src string, vars map[string]string, curDir string, strictMode, isEscaped bool) (*Pdl, error) {
	rendered := Substitute(src, vars)

	var messages []Message
	var sc *schema.Schema
	var currRole *pdlRole
	var lineBuffer []string

	lines := strings.Split(rendered, "\n")
	lines = append(lines, "<|assistant|>") // forces the final turn to flush

	flush := func(role pdlRole) error {
		if len(lineBuffer) == 0 && currRole == nil {
			return nil
		}

		switch role {
		case pdlRoleSchema:
			parsed, err := schema.Parse(strings.Join(lineBuffer, "\n"))
			if err != nil {
				if strictMode {
					return err
				}
				return nil
			}
			if sc != nil && strictMode {
				return invalidPdl("<|schema|> appeared multiple times.")
			}
			sc = parsed
		case pdlRoleReasoning:
			// reasoning turns are dropped, never sent to the provider.
		default:
			raw := strings.TrimSpace(strings.Join(lineBuffer, "\n"))

			role := RoleSystem
			if currRole != nil {
				role = currRole.toRole()
			} else if raw != "" {
				if strictMode {
					return ErrRoleMissing
				}
			}

			content, err := parseInlineContent(raw, isEscaped, curDir)
			if err != nil {
				if strictMode {
					return err
				}
				content = []MessageContent{TextContent(raw)}
			}
			if len(content) > 0 {
				messages = append(messages, Message{Role: role, Content: content})
			}
		}
		return nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if isTurnMarker(trimmed) {
			inner := strings.ToLower(trimmed[2 : len(trimmed)-2])
			switch pdlRole(inner) {
			case pdlRoleUser, pdlRoleSystem, pdlRoleAssistant, pdlRoleSchema, pdlRoleReasoning:
				if len(lineBuffer) > 0 || currRole != nil {
					role := pdlRoleSystem
					if currRole != nil {
						role = *currRole
					}
					if err := flush(role); err != nil {
						return nil, err
					}
				}
				r := pdlRole(inner)
				currRole = &r
				lineBuffer = nil
				continue
			default:
				if strictMode && isAllAlpha(inner) {
					return nil, fmt.Errorf("pdl: invalid turn separator %q", inner)
				}
				lineBuffer = append(lineBuffer, line)
			}
		} else {
			lineBuffer = append(lineBuffer, line)
		}
	}

	if n := len(messages); n > 0 && len(messages[n-1].Content) == 0 {
		messages = messages[:n-1]
	}

	result := &Pdl{Schema: sc, Messages: messages}
	if strictMode {
		if err := result.Validate(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ParseFile reads path and parses it as PDL source, resolving inline
// <|media(path)|> blocks relative to path's directory.
func ParseFile(path string, vars map[string]string, strictMode, isEscaped bool) (*Pdl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), vars, filepath.Dir(path), strictMode, isEscaped)
}

func isTurnMarker(s string) bool {
	return strings.HasPrefix(s, "<|") && strings.HasSuffix(s, "|>") && len(s) > 4
}

func isAllAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// parseInlineContent splits raw turn text into text/image chunks,
// decoding any <|media(...)|>/<|raw_media(...)|> tokens it finds.
func parseInlineContent(raw string, isEscaped bool, curDir string) ([]MessageContent, error) {
	var result []MessageContent
	var textBuf strings.Builder

	i := 0
	for i < len(raw) {
		if raw[i] == '<' {
			tok, newIndex, ok := tryReadToken(raw, i)
			if ok {
				img, consumedErr := tryParseInlineBlock(tok, curDir)
				if consumedErr != nil {
					return nil, consumedErr
				}
				if img != nil {
					if textBuf.Len() > 0 {
						result = append(result, TextContent(finishText(textBuf.String(), isEscaped)))
						textBuf.Reset()
					}
					result = append(result, *img)
					i = newIndex
					continue
				}
			}
		}
		textBuf.WriteByte(raw[i])
		i++
	}
	if textBuf.Len() > 0 {
		result = append(result, TextContent(finishText(textBuf.String(), isEscaped)))
	}
	return result, nil
}

func finishText(s string, isEscaped bool) string {
	if isEscaped {
		return UnescapeTokens(s)
	}
	return s
}

// tryReadToken reads a "<|...|>" token starting at index, tolerating a
// single stray '|' inside (mirrors the reference's lookahead scan).
func tryReadToken(s string, index int) (string, int, bool) {
	if index+1 >= len(s) || s[index] != '<' || s[index+1] != '|' {
		return "", 0, false
	}
	i := index + 2
	for i+1 < len(s) {
		if s[i] == '|' && s[i+1] == '>' {
			return s[index+2 : i], i + 2, true
		}
		i++
	}
	return "", 0, false
}

func tryParseInlineBlock(token, curDir string) (*MessageContent, error) {
	if m := rawMediaRe.FindStringSubmatch(token); m != nil {
		t, err := ImageTypeFromExtension(m[1])
		if err != nil {
			return nil, err
		}
		b, err := decodeBase64(m[2])
		if err != nil {
			return nil, err
		}
		c := ImageContent(t, b)
		return &c, nil
	}
	if m := mediaRe.FindStringSubmatch(token); m != nil {
		path := filepath.Join(curDir, m[1])
		t, err := ImageTypeFromExtension(filepath.Ext(path))
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		c := ImageContent(t, b)
		return &c, nil
	}
	return nil, fmt.Errorf("pdl: invalid inline block %q", token)
}
