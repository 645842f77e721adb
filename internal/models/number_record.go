package models

// Category is the Begone handling applied to a number
type Category string

// CategoryBlocked rejects calls from the number
const CategoryBlocked Category = "blocked"

// categoryCodes maps categories to the codes stored in Begone exports
var categoryCodes = map[Category]string{
	CategoryBlocked: "0",
}

// Code returns the Begone code for the category, or "" if unknown
func (c Category) Code() string {
	return categoryCodes[c]
}

// NumberRecord is one number (or wildcard pattern) in the Begone export
type NumberRecord struct {
	Title       string   `json:"title" validate:"required"`
	AddNational bool     `json:"addNational"`
	Category    Category `json:"category" validate:"required,category"`
	Number      string   `json:"number" validate:"required"`
}

// NewBlockedRecord creates a blocked record for a sanitized number
func NewBlockedRecord(title, number string) NumberRecord {
	return NumberRecord{
		Title:       title,
		AddNational: true,
		Category:    CategoryBlocked,
		Number:      number,
	}
}
