package tenancy

import (
	"testing"

	"github.com/morgana-orum/portal-api/internal/models"
)

func TestVisibleTo(t *testing.T) {
	unimhealth := models.AssociationSet{models.AssociationUnimhealth}

	t.Run("OwnScope", func(t *testing.T) {
		if !VisibleTo(unimhealth, models.AssociationUnimhealth) {
			t.Error("expected item to be visible under its own association")
		}
	})

	t.Run("CentralScope", func(t *testing.T) {
		if !VisibleTo(unimhealth, models.CentralAssociation) {
			t.Error("expected item to be visible under the central scope")
		}
	})

	t.Run("OtherScope", func(t *testing.T) {
		if VisibleTo(unimhealth, models.AssociationEconomia) {
			t.Error("expected item to be hidden under an unrelated scope")
		}
	})

	t.Run("CentralTaggedVisibleEverywhere", func(t *testing.T) {
		set := models.AssociationSet{models.AssociationScipog, models.CentralAssociation}
		if !VisibleTo(set, models.AssociationEconomia) {
			t.Error("expected central-tagged item to be visible under any scope")
		}
	})

	t.Run("EmptySetLegacyRows", func(t *testing.T) {
		if !VisibleTo(nil, models.AssociationEconomia) {
			t.Error("expected legacy rows with no set to be visible everywhere")
		}
	})
}

func TestNormalizeAssociations(t *testing.T) {
	t.Run("LegacySingleTag", func(t *testing.T) {
		set := models.NormalizeAssociations(nil, models.AssociationScipog)
		if len(set) != 1 || set[0] != models.AssociationScipog {
			t.Errorf("expected legacy tag folded into set, got %v", set)
		}
	})

	t.Run("SetWins", func(t *testing.T) {
		set := models.NormalizeAssociations(
			models.AssociationSet{models.AssociationEconomia},
			models.AssociationScipog,
		)
		if len(set) != 1 || set[0] != models.AssociationEconomia {
			t.Errorf("expected set to take precedence over legacy tag, got %v", set)
		}
	})
}
