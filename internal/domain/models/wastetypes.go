// internal/domain/models/wastetypes.go
package models

import "strings"

// Canonical waste type identifiers stored in Collection.WasteType.
const (
	WasteGeneral    = "general"
	WastePlastic    = "plastic"
	WastePaper      = "paper"
	WasteGlass      = "glass"
	WasteMetal      = "metal"
	WasteOrganic    = "organic"
	WasteElectronic = "electronic"
	WasteHazardous  = "hazardous"
)

// WasteTypes is the set of waste types accepted on new collections.
var WasteTypes = []string{
	WasteGeneral,
	WastePlastic,
	WastePaper,
	WasteGlass,
	WasteMetal,
	WasteOrganic,
	WasteElectronic,
	WasteHazardous,
}

// IsValidWasteType reports whether t is a known waste type.
func IsValidWasteType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, w := range WasteTypes {
		if w == t {
			return true
		}
	}
	return false
}
