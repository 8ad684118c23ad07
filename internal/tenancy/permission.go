package tenancy

import (
	"strings"

	"github.com/morgana-orum/portal-api/internal/models"
)

// Capabilities is what a caller may do to one content item. Reassign covers
// changing the item's association set.
type Capabilities struct {
	Edit     bool
	Delete   bool
	Reassign bool
}

// CapabilitiesFor evaluates the permission matrix for a caller against a
// content item's association set. This is the single source of truth for
// admin mutations; handlers must not re-derive any of it.
//
// Central admins (SUPER_ADMIN, ADMIN_MORGANA) may do everything. A network
// admin may edit items tagged with its own association, but may neither
// delete nor reassign an item that carries the central tag. Plain users and
// anonymous callers may do nothing.
func CapabilitiesFor(user *models.User, set models.AssociationSet) Capabilities {
	if user == nil {
		return Capabilities{}
	}

	switch user.Role {
	case models.RoleSuperAdmin, models.RoleAdminMorgana:
		return Capabilities{Edit: true, Delete: true, Reassign: true}
	case models.RoleAdminNetwork:
		if !set.Contains(user.Association) {
			return Capabilities{}
		}
		central := set.Contains(models.CentralAssociation)
		return Capabilities{
			Edit:     true,
			Delete:   !central,
			Reassign: !central,
		}
	default:
		return Capabilities{}
	}
}

// departmentKeywords maps each tenant to the free-text department keywords
// that also grant its network admins edit rights on representative records.
// Matching is a case-insensitive substring heuristic, not an exact rule.
var departmentKeywords = map[models.Association][]string{
	models.AssociationUnimhealth:  {"medicina", "chirurgia", "farmacia", "odontoiatria"},
	models.AssociationEconomia:    {"economia", "management", "finanza"},
	models.AssociationScipog:      {"scienze politiche", "giurisprudenza", "sociologia"},
	models.AssociationInsideDicam: {"dicam", "ingegneria", "architettura"},
}

// CanEditRepresentative applies the base permission matrix to a directory
// record, extended by the department-keyword exception for network admins.
func CanEditRepresentative(user *models.User, rep *models.Representative) bool {
	set := models.AssociationSet{}
	if rep.Association != "" {
		set = models.AssociationSet{rep.Association}
	}
	if CapabilitiesFor(user, set).Edit {
		return true
	}

	if user == nil || user.Role != models.RoleAdminNetwork {
		return false
	}
	dept := strings.ToLower(rep.Department)
	if dept == "" {
		return false
	}
	for _, kw := range departmentKeywords[user.Association] {
		if strings.Contains(dept, kw) {
			return true
		}
	}
	return false
}
