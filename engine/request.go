package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/indicator/core"
)

// Request asks for one indicator. As overrides the column label the
// indicator would derive from its parameters.
type Request struct {
	Name   string
	As     string
	Params core.Params
}

// RequestsFromConfig converts configured requests.
func RequestsFromConfig(reqs []config.IndicatorRequest) []Request {
	out := make([]Request, len(reqs))
	for i, r := range reqs {
		out[i] = Request{Name: r.Name, As: r.As, Params: core.Params(r.Params)}
	}
	return out
}

// signature renders the request including parameter value types, so a
// string "20" and an int 20 never share a cached plan.
func (r Request) signature() string {
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteByte('|')
	sb.WriteString(r.As)
	for _, k := range keys {
		v := r.Params[k]
		fmt.Fprintf(&sb, "|%s=%T:%s", k, v, core.FormatValue(v))
	}
	return sb.String()
}

func signature(reqs []Request) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.signature()
	}
	return strings.Join(parts, "\n")
}
