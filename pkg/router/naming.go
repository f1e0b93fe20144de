package router

import (
	"strings"

	"github.com/vango-dev/fsroutes/pkg/routepath"
	"github.com/vango-dev/fsroutes/pkg/segment"
)

// Names used by DefaultRouteName.
const (
	RootRouteName     = "root"
	FallbackRouteName = "page"
)

// DefaultRouteName names the root "root" and every other route after its raw
// segments: static segments as written, parameters by name, joined with "-"
// and camel-cased.
//
//	news/[id]        → newsId
//	user_profile     → userProfile
//	docs/[...slug]   → docsSlug
func DefaultRouteName(ctx NameContext) (string, error) {
	if ctx.IsRoot {
		return RootRouteName, nil
	}

	parts := make([]string, 0, len(ctx.RawSegments))
	for _, raw := range ctx.RawSegments {
		if part := segment.Parse(raw).NamePart(); part != "" {
			parts = append(parts, part)
		}
	}

	name := strings.Join(parts, "-")
	if name == "" {
		name = FallbackRouteName
	}
	return routepath.ToCamel(name), nil
}
