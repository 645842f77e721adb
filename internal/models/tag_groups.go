package models

import "sort"

// AllGroupTag is the reserved tag that collects every record
const AllGroupTag = "all"

// TagGroups maps a tag name to its records in insertion order
type TagGroups map[string][]NumberRecord

// Add appends records to the named group
func (g TagGroups) Add(tag string, records []NumberRecord) {
	g[tag] = append(g[tag], records...)
}

// Tags returns the group names sorted alphabetically
func (g TagGroups) Tags() []string {
	tags := make([]string, 0, len(g))
	for tag := range g {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
