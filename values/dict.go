package values

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errNotLiteral = errors.New("not a literal")
	openerOf      = map[byte]byte{')': '(', ']': '[', '}': '{'}
)

// ParseDict parses a literal mapping such as {'name': 'web', 'workers': 4, 'hosts': ('a', 'b')}.
// Strings must be quoted. Numbers, True, False and None are the only bare words.
// Tuples become lists and keys are stringified.
func ParseDict(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}
	source, ok := tuplesToLists(trimmed)
	if !ok {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}

	var doc yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(source))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}
	if len(doc.Content) != 1 {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode || root.Style&yaml.FlowStyle == 0 {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}

	dict, err := literal(root)
	if err != nil {
		return nil, fmt.Errorf("Cannot interpret dict value %q", raw)
	}
	return dict.(map[string]any), nil
}

// literal converts a flow node into plain Go values.
func literal(node *yaml.Node) (any, error) {
	if node.Anchor != "" || node.Style&yaml.TaggedStyle != 0 {
		return nil, errNotLiteral
	}
	switch node.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, errNotLiteral
			}
			if _, err := literal(key); err != nil {
				return nil, err
			}
			item, err := literal(val)
			if err != nil {
				return nil, err
			}
			out[key.Value] = item
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := literal(child)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case yaml.ScalarNode:
		return scalarLiteral(node)
	default:
		return nil, errNotLiteral
	}
}

func scalarLiteral(node *yaml.Node) (any, error) {
	switch node.Style {
	case yaml.SingleQuotedStyle, yaml.DoubleQuotedStyle:
		return node.Value, nil
	case 0:
	default:
		return nil, errNotLiteral
	}

	switch node.Value {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	// implicit nulls and bare words
	if tag := node.ShortTag(); tag != "!!int" && tag != "!!float" {
		return nil, errNotLiteral
	}
	// YAML-only spellings such as .inf and .nan
	if strings.HasPrefix(strings.TrimLeft(node.Value, "+-"), ".") && strings.ContainsAny(node.Value, "iInN") {
		return nil, errNotLiteral
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// tuplesToLists rewrites parenthesised tuples outside string literals as flow sequences.
// A parenthesised group holding a single item without a trailing comma is rejected.
func tuplesToLists(raw string) (string, bool) {
	type frame struct {
		open  byte
		items bool
		comma bool
	}
	out := []byte(raw)
	var stack []frame
	var quote byte
	markItem := func() {
		if len(stack) > 0 {
			stack[len(stack)-1].items = true
		}
	}

	for i := 0; i < len(out); i++ {
		c := out[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			markItem()
			quote = c
		case '(', '[', '{':
			markItem()
			stack = append(stack, frame{open: c})
			if c == '(' {
				out[i] = '['
			}
		case ')', ']', '}':
			if len(stack) == 0 {
				return "", false
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.open != openerOf[c] {
				return "", false
			}
			if c == ')' {
				if top.items && !top.comma {
					return "", false
				}
				out[i] = ']'
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].comma = true
			}
		case ' ', '\t', '\r', '\n', ':':
		default:
			markItem()
		}
	}
	return string(out), len(stack) == 0 && quote == 0
}

// Dict declares a mapping value. The default may be a map or a raw literal.
func Dict(opts ...Option) (*Value[map[string]any], error) {
	const kind = "DictValue"
	o := newOptions(nil, opts)

	def, err := defaultOf[map[string]any](kind, o.def, ParseDict)
	if err != nil {
		return nil, err
	}
	if def == nil {
		def = map[string]any{}
	} else {
		def = cloneDefault(def).(map[string]any)
	}
	return newValue[map[string]any](kind, o, ParseDict, def)
}

func init() {
	Casters.Register("dict", Caster[map[string]any](ParseDict))
}
