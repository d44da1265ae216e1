package models

// Categories is the predefined set an expense may belong to.
var Categories = []string{
	"Food",
	"Groceries",
	"Transport",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Education",
	"Shopping",
	"Travel",
	"Other",
}

// IsValidCategory reports whether name is one of the predefined categories.
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
