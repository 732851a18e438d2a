// Package domain contains the core data structures and domain logic for the application.
package domain

import "strings"

// DefaultTop is the number of packages audited by the standard run.
const DefaultTop = 100

// QuickTop is the package count used by the shorter audit variant.
const QuickTop = 20

// BaseName returns the grouping key of a package id: the text before the
// first '.', or the whole id when it has none.
func BaseName(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// GroupByBaseName keeps the first id seen for every base name, preserving
// rank order, and truncates the result to top entries.
func GroupByBaseName(ids []string, top int) []string {
	if top <= 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	grouped := make([]string, 0, min(len(ids), top))
	for _, id := range ids {
		key := BaseName(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		grouped = append(grouped, id)
		if len(grouped) == top {
			break
		}
	}
	return grouped
}

// Artifact is a package file acquired into the run workspace.
type Artifact struct {
	ID      string `json:"id" yaml:"id"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Path    string `json:"-" yaml:"-"`
	Size    int64  `json:"size_bytes" yaml:"size_bytes"`
	Digest  string `json:"digest,omitempty" yaml:"digest,omitempty"`
}
