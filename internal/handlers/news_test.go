package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/morgana-orum/portal-api/internal/models"
)

func newsPayload() NewsPayload {
	return NewsPayload{
		Title:        "Nuovo bando Erasmus",
		Description:  "Pubblicato il bando",
		PublishDate:  time.Now().Add(-time.Hour),
		Associations: string(models.CentralAssociation),
	}
}

func TestNewsPublishDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("DraftThenPublishDispatchesOnce", func(t *testing.T) {
		env := setupEnv(t)
		handler := env.newsHandler()
		_, cookie := env.createUser(t, "admin@example.it", models.RoleSuperAdmin, "")
		env.db.Create(&models.User{Email: "sub@example.it", PasswordHash: "x", Newsletter: true})

		create := &CreateNewsInput{}
		create.Cookie = cookie
		create.Body = newsPayload()
		create.Body.Published = false

		created, err := handler.HandleCreate(ctx, create)
		if err != nil {
			t.Fatalf("HandleCreate returned error: %v", err)
		}
		env.dispatcher.Flush()
		if got := env.notificationCount(t); got != 0 {
			t.Fatalf("expected no notification for draft, got %d", got)
		}

		update := &UpdateNewsInput{ID: created.Body.ID}
		update.Cookie = cookie
		update.Body = newsPayload()
		update.Body.Published = true

		if _, err := handler.HandleUpdate(ctx, update); err != nil {
			t.Fatalf("HandleUpdate returned error: %v", err)
		}
		env.dispatcher.Flush()
		if got := env.notificationCount(t); got != 1 {
			t.Fatalf("expected one notification on publish, got %d", got)
		}
		if got := env.mailer.recipients(); len(got) != 1 || got[0] != "sub@example.it" {
			t.Errorf("expected one subscriber email, got %v", got)
		}

		// Saving an already-published article must not dispatch again.
		update.Body.Title = "Nuovo bando Erasmus 2026"
		if _, err := handler.HandleUpdate(ctx, update); err != nil {
			t.Fatalf("second HandleUpdate returned error: %v", err)
		}
		env.dispatcher.Flush()
		if got := env.notificationCount(t); got != 1 {
			t.Errorf("expected still one notification after re-save, got %d", got)
		}
		if got := env.mailer.recipients(); len(got) != 1 {
			t.Errorf("expected no second email batch, got %v", got)
		}
	})

	t.Run("CreateAsPublishedDispatches", func(t *testing.T) {
		env := setupEnv(t)
		handler := env.newsHandler()
		_, cookie := env.createUser(t, "admin@example.it", models.RoleSuperAdmin, "")

		create := &CreateNewsInput{}
		create.Cookie = cookie
		create.Body = newsPayload()
		create.Body.Published = true

		if _, err := handler.HandleCreate(ctx, create); err != nil {
			t.Fatalf("HandleCreate returned error: %v", err)
		}
		env.dispatcher.Flush()
		if got := env.notificationCount(t); got != 1 {
			t.Errorf("expected one notification for create-as-published, got %d", got)
		}
	})
}

func TestNewsPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("NetworkAdminForeignItem", func(t *testing.T) {
		env := setupEnv(t)
		handler := env.newsHandler()
		_, cookie := env.createUser(t, "economia@example.it", models.RoleAdminNetwork, models.AssociationEconomia)

		article := models.News{Title: "Scipog only", PublishDate: time.Now(),
			Associations: models.AssociationSet{models.AssociationScipog}}
		env.db.Create(&article)

		update := &UpdateNewsInput{ID: article.ID}
		update.Cookie = cookie
		update.Body = newsPayload()
		update.Body.Associations = string(models.AssociationScipog)

		if _, err := handler.HandleUpdate(ctx, update); err == nil {
			t.Fatal("expected forbidden for foreign item")
		}
	})

	t.Run("NetworkAdminCannotReassignCentralTagged", func(t *testing.T) {
		env := setupEnv(t)
		handler := env.newsHandler()
		_, cookie := env.createUser(t, "economia@example.it", models.RoleAdminNetwork, models.AssociationEconomia)

		article := models.News{Title: "Shared", PublishDate: time.Now(),
			Associations: models.AssociationSet{models.AssociationEconomia, models.CentralAssociation}}
		env.db.Create(&article)

		// Same set is fine.
		update := &UpdateNewsInput{ID: article.ID}
		update.Cookie = cookie
		update.Body = newsPayload()
		update.Body.Associations = "ECONOMIA,MORGANA_ORUM"
		if _, err := handler.HandleUpdate(ctx, update); err != nil {
			t.Fatalf("expected edit with unchanged set to succeed, got %v", err)
		}

		// Shrinking the set is a reassignment and must be refused.
		update.Body.Associations = "ECONOMIA"
		if _, err := handler.HandleUpdate(ctx, update); err == nil {
			t.Fatal("expected forbidden when reassigning a central-tagged item")
		}

		// So is deleting it.
		del := &DeleteNewsInput{ID: article.ID}
		del.Cookie = cookie
		if _, err := handler.HandleDelete(ctx, del); err == nil {
			t.Fatal("expected forbidden when deleting a central-tagged item")
		}
	})

	t.Run("PlainUserCannotCreate", func(t *testing.T) {
		env := setupEnv(t)
		handler := env.newsHandler()
		_, cookie := env.createUser(t, "user@example.it", models.RoleUser, models.AssociationEconomia)

		create := &CreateNewsInput{}
		create.Cookie = cookie
		create.Body = newsPayload()

		if _, err := handler.HandleCreate(ctx, create); err == nil {
			t.Fatal("expected forbidden for plain user")
		}
	})
}

func TestNewsDuplicate(t *testing.T) {
	env := setupEnv(t)
	handler := env.newsHandler()
	_, cookie := env.createUser(t, "admin@example.it", models.RoleAdminMorgana, "")

	article := models.News{Title: "Originale", Published: true, PublishDate: time.Now(),
		Associations: models.AssociationSet{models.CentralAssociation}}
	env.db.Create(&article)

	input := &DuplicateNewsInput{ID: article.ID}
	input.Cookie = cookie

	resp, err := handler.HandleDuplicate(context.Background(), input)
	if err != nil {
		t.Fatalf("HandleDuplicate returned error: %v", err)
	}
	if resp.Body.ID == article.ID {
		t.Error("expected a new row, got the original ID")
	}
	if resp.Body.Published {
		t.Error("expected the copy to be an unpublished draft")
	}

	env.dispatcher.Flush()
	if got := env.notificationCount(t); got != 0 {
		t.Errorf("expected no notification from duplication, got %d", got)
	}
}
