// Package tenancy holds the association-scoping rules: which brand
// audiences see a content item and which admins may mutate it.
package tenancy

import (
	"github.com/morgana-orum/portal-api/internal/models"
)

// VisibleTo reports whether content tagged with set is shown under the
// requested brand scope.
//
// The central scope is the umbrella: every item is visible under it, and
// content carrying the central tag is visible everywhere. An empty set is
// treated as central-only content: rows written before the multi-association
// migration carry no set, and hiding them from every scope would blank the
// legacy archive. See DESIGN.md before changing this.
func VisibleTo(set models.AssociationSet, requested models.Association) bool {
	if requested == models.CentralAssociation {
		return true
	}
	if len(set) == 0 {
		return true
	}
	return set.Contains(requested) || set.Contains(models.CentralAssociation)
}
