package dispatch

import (
	"strconv"
	"strings"
	"syncwatch/internal/model"
)

// Expand substitutes ${path}, ${folder}, ${id} and ${data_type} from event.
// Unknown names expand to nothing; an unterminated "${" is kept as written.
func Expand(template string, event model.Event) string {
	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			break
		}

		end := strings.IndexByte(rest[start+2:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:start])
		b.WriteString(lookup(rest[start+2:start+2+end], event))
		rest = rest[start+2+end+1:]
	}

	return b.String()
}

func lookup(name string, event model.Event) string {
	switch name {
	case "path":
		return event.Path
	case "folder":
		return event.Folder
	case "id":
		return strconv.FormatInt(event.ID, 10)
	case "data_type":
		return event.DataType
	default:
		return ""
	}
}
