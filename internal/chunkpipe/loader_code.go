package chunkpipe

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// topLevelNodeTypes names the tree-sitter node kinds this loader treats
// as one logical unit per language, grounded in the teacher's
// LanguageRegistry (internal/chunk/languages.go) but narrowed to just
// the node types that matter for "one unit per function/class".
var topLevelNodeTypes = map[string][]string{
	"go":         {"function_declaration", "method_declaration"},
	"python":     {"function_definition", "class_definition"},
	"javascript": {"function_declaration", "class_declaration", "method_definition"},
	"typescript": {"function_declaration", "class_declaration", "method_definition"},
}

func languageFor(path string) (*sitter.Language, string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage(), "go", true
	case ".py":
		return python.GetLanguage(), "python", true
	case ".js", ".jsx":
		return javascript.GetLanguage(), "javascript", true
	case ".ts", ".tsx":
		return typescript.GetLanguage(), "typescript", true
	default:
		return nil, "", false
	}
}

// CodeLoader yields one Unit per top-level function/class/method found
// by tree-sitter, instead of per-line units, so a chunk boundary never
// falls mid-function. Source between recognized nodes (imports, package
// declarations, top-level vars) is kept as line units so nothing is lost.
type CodeLoader struct{}

func (CodeLoader) Load(path string, data []byte) ([]Unit, error) {
	lang, langName, ok := languageFor(path)
	if !ok {
		return LineLoader{}.Load(path, data)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, data)
	if err != nil || tree == nil {
		return LineLoader{}.Load(path, data)
	}
	root := tree.RootNode()

	wanted := topLevelNodeTypes[langName]
	var spans []*sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if containsType(wanted, child.Type()) {
			spans = append(spans, child)
		}
	}
	if len(spans) == 0 {
		return LineLoader{}.Load(path, data)
	}

	var units []Unit
	cursor := uint32(0)
	for _, node := range spans {
		if node.StartByte() > cursor {
			units = append(units, textUnits(data[cursor:node.StartByte()])...)
		}
		units = append(units, Unit{Text: string(data[node.StartByte():node.EndByte()]) + "\n"})
		cursor = node.EndByte()
	}
	if cursor < uint32(len(data)) {
		units = append(units, textUnits(data[cursor:])...)
	}
	return units, nil
}

func containsType(types []string, t string) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

// textUnits splits a leftover span into line units, mirroring LineLoader
// for the parts of a file tree-sitter didn't carve into a symbol.
func textUnits(data []byte) []Unit {
	units, err := LineLoader{}.Load("", data)
	if err != nil {
		return nil
	}
	return units
}

var _ Loader = CodeLoader{}
