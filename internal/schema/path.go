package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// FormatPath converts a cty.Path to a human-readable string such as
// `retry.attempts`, `hosts[0]` or `tags["env"]`. The empty path is rendered
// as "(root)".
func FormatPath(path cty.Path) string {
	if len(path) == 0 {
		return "(root)"
	}

	var sb strings.Builder
	for _, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if sb.Len() > 0 {
				sb.WriteRune('.')
			}
			sb.WriteString(s.Name)
		case cty.IndexStep:
			sb.WriteRune('[')
			switch {
			case s.Key.IsNull() || !s.Key.IsKnown():
				sb.WriteString("...")
			case s.Key.Type() == cty.String:
				sb.WriteString(fmt.Sprintf("%q", s.Key.AsString()))
			case s.Key.Type() == cty.Number:
				sb.WriteString(s.Key.AsBigFloat().Text('f', -1))
			default:
				sb.WriteString("...")
			}
			sb.WriteRune(']')
		default:
			sb.WriteString("?")
		}
	}
	return sb.String()
}

func attrPath(path cty.Path, name string) cty.Path {
	return path.Copy().GetAttr(name)
}

func indexPath(path cty.Path, key cty.Value) cty.Path {
	return path.Copy().Index(key)
}
