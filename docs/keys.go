// Package docs caches crate documentation, item documentation and search
// results on top of any cache.Cache.
package docs

import (
	"strconv"
	"time"
)

// Family is the first segment of every key this package builds.
type Family string

const (
	FamilyCrate  Family = "crate"
	FamilyItem   Family = "item"
	FamilySearch Family = "search"
)

// Default lifetimes per family.
const (
	CrateTTL  = time.Hour
	ItemTTL   = 30 * time.Minute
	SearchTTL = 5 * time.Minute
)

// TTL returns the default lifetime of entries in f, or zero for an unknown
// family.
func (f Family) TTL() time.Duration {
	switch f {
	case FamilyCrate:
		return CrateTTL
	case FamilyItem:
		return ItemTTL
	case FamilySearch:
		return SearchTTL
	default:
		return 0
	}
}

// CrateKey returns crate:<name> or, with a version, crate:<name>:<version>.
func CrateKey(name, version string) string {
	if version == "" {
		return string(FamilyCrate) + ":" + name
	}
	return string(FamilyCrate) + ":" + name + ":" + version
}

// ItemKey returns item:<name>:<path> or, with a version,
// item:<name>:<version>:<path>.
func ItemKey(name, itemPath, version string) string {
	if version == "" {
		return string(FamilyItem) + ":" + name + ":" + itemPath
	}
	return string(FamilyItem) + ":" + name + ":" + version + ":" + itemPath
}

// SearchKey returns search:<query>:<limit>. The query is used verbatim.
func SearchKey(query string, limit uint32) string {
	return string(FamilySearch) + ":" + query + ":" + strconv.FormatUint(uint64(limit), 10)
}
