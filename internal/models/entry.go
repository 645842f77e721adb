package models

// Entry is one item of the blocklist YAML document
type Entry struct {
	Title    string   `yaml:"title" validate:"required"`
	Numbers  []string `yaml:"numbers,omitempty" validate:"dive,required"`
	Mnemonic string   `yaml:"mnemonic,omitempty" validate:"omitempty,mnemonic"`
	Tags     []string `yaml:"tags,omitempty" validate:"dive,required"`
}

// DistinctTags returns the entry's tags without duplicates and without the
// reserved catch-all tag, in first-occurrence order.
func (e *Entry) DistinctTags() []string {
	tags := make([]string, 0, len(e.Tags))
	seen := make(map[string]bool, len(e.Tags))
	for _, tag := range e.Tags {
		if tag == AllGroupTag || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
