package api

import "strings"

// Names that collide with literal path segments under collection routes.
// Letting a user, group, project, or story claim one of these would
// shadow the corresponding page.
var reservedNames = []string{"new", "edit", "json", "xml", "slides"}

func isReservedName(name string) bool {
	for _, reserved := range reservedNames {
		if strings.EqualFold(strings.TrimSpace(name), reserved) {
			return true
		}
	}
	return false
}
