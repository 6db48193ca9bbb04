// Package storage derives canonical physical locations for catalog entities
// and provides the directory-creation capability backing them.
package storage

import "strings"

const separator = "/"

// Resolve joins a storage root with one or more logical path segments.
// Trailing separators are stripped from the root and every segment gets
// exactly one leading separator; surplus separators on a segment are
// dropped. The result is deterministic and applying Resolve to an
// already-resolved path with no extra segments returns it unchanged.
func Resolve(root string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(root, separator))
	for _, seg := range segments {
		seg = strings.Trim(seg, separator)
		if seg == "" {
			continue
		}
		b.WriteString(separator)
		b.WriteString(seg)
	}
	return b.String()
}
