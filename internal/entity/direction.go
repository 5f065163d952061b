package entity

import "strings"

// DirectionSet is an ordered set of direction tags without duplicates.
type DirectionSet struct {
	tags []string
}

func NewDirectionSet(tags ...string) *DirectionSet {
	ds := &DirectionSet{}
	for _, tag := range tags {
		ds.Add(tag)
	}
	return ds
}

// Add appends the tag. Blank or already present tags are ignored and false is returned.
func (ds *DirectionSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || ds.Contains(tag) {
		return false
	}
	ds.tags = append(ds.tags, tag)
	return true
}

// Remove deletes the tag if present.
func (ds *DirectionSet) Remove(tag string) bool {
	tag = strings.TrimSpace(tag)
	for i, t := range ds.tags {
		if t == tag {
			ds.tags = append(ds.tags[:i], ds.tags[i+1:]...)
			return true
		}
	}
	return false
}

func (ds *DirectionSet) Contains(tag string) bool {
	for _, t := range ds.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (ds *DirectionSet) Len() int {
	return len(ds.tags)
}

// Tags returns a copy in insertion order.
func (ds *DirectionSet) Tags() []string {
	out := make([]string, len(ds.tags))
	copy(out, ds.tags)
	return out
}
