package expr

import (
	"regexp"
	"strings"
)

// segment is one step of a nested document path. With list indexes enabled,
// "items[0]" is {name: "items", index: "[0]"}; otherwise the whole text is the name.
type segment struct {
	name  string
	index string
}

var indexedSegmentPattern = regexp.MustCompile(`^([^\[\]]+)((?:\[[0-9]+\])*)$`)

func parseSegment(s string, listIndexes bool) (segment, bool) {
	if s == "" {
		return segment{}, false
	}
	if !listIndexes {
		return segment{name: s}, true
	}
	m := indexedSegmentPattern.FindStringSubmatch(s)
	if m == nil {
		return segment{}, false
	}
	return segment{name: m[1], index: m[2]}, true
}

// splitPath splits an attribute path on sep into its segments.
// An empty sep yields a single segment.
func splitPath(path, sep string, listIndexes bool) ([]segment, error) {
	if path == "" {
		return nil, ShapeError(path, "attribute path must not be empty")
	}
	parts := []string{path}
	if sep != "" {
		parts = strings.Split(path, sep)
	}
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		seg, ok := parseSegment(p, listIndexes)
		if !ok {
			return nil, ShapeError(path, "malformed path segment %q", p)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// TopLevelAttribute returns the name of the top-level attribute a path assigns,
// using the same rules as Update.
func TopLevelAttribute(path, sep string, listIndexes bool) (string, error) {
	segs, err := splitPath(path, sep, listIndexes)
	if err != nil {
		return "", err
	}
	return segs[0].name, nil
}
