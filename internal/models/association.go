package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Association is the brand/tenant tag scoping content visibility and
// network-admin permissions.
type Association string

const (
	AssociationMorganaOrum Association = "MORGANA_ORUM"
	AssociationUnimhealth  Association = "UNIMHEALTH"
	AssociationEconomia    Association = "ECONOMIA"
	AssociationMatricole   Association = "MATRICOLE"
	AssociationScipog      Association = "SCIPOG"
	AssociationInsideDicam Association = "INSIDE_DICAM"
)

// CentralAssociation is the umbrella brand: content tagged with it is
// visible under every tenant scope.
const CentralAssociation = AssociationMorganaOrum

// KnownAssociations lists every valid tag, central first.
var KnownAssociations = []Association{
	AssociationMorganaOrum,
	AssociationUnimhealth,
	AssociationEconomia,
	AssociationMatricole,
	AssociationScipog,
	AssociationInsideDicam,
}

// IsValid reports whether a is one of the known tags.
func (a Association) IsValid() bool {
	for _, k := range KnownAssociations {
		if a == k {
			return true
		}
	}
	return false
}

// Slug returns the URL path segment for the association's public pages.
func (a Association) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(a)), "_", "-")
}

// AssociationSet is a set of brand tags persisted as a single comma-joined
// column, matching how category tags are stored.
type AssociationSet []Association

// Scan implements sql.Scanner.
func (s *AssociationSet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported association set type %T", value)
	}
	*s = ParseAssociationSet(raw)
	return nil
}

// Value implements driver.Valuer.
func (s AssociationSet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s AssociationSet) String() string {
	parts := make([]string, 0, len(s))
	for _, a := range s {
		parts = append(parts, string(a))
	}
	return strings.Join(parts, ",")
}

// Contains reports whether the set includes the given tag.
func (s AssociationSet) Contains(a Association) bool {
	for _, e := range s {
		if e == a {
			return true
		}
	}
	return false
}

// ParseAssociationSet splits a comma-joined tag string, dropping empty and
// duplicate entries.
func ParseAssociationSet(raw string) AssociationSet {
	if raw == "" {
		return nil
	}
	var set AssociationSet
	for _, p := range strings.Split(raw, ",") {
		tag := Association(strings.TrimSpace(p))
		if tag == "" || set.Contains(tag) {
			continue
		}
		set = append(set, tag)
	}
	return set
}

// NormalizeAssociations folds the legacy single-tag column into the set
// representation. Rows written before the multi-association migration carry
// only the single tag; new code always writes the set.
func NormalizeAssociations(set AssociationSet, legacy Association) AssociationSet {
	if len(set) > 0 {
		return set
	}
	if legacy != "" {
		return AssociationSet{legacy}
	}
	return nil
}
