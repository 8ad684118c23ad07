package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/morgana-orum/portal-api/internal/booking"
	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/gorm"
)

func TestBookEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	handler := env.bookingHandler()
	user, cookie := env.createUser(t, "mario@example.it", models.RoleUser, "")

	event := models.Event{
		Model:       gorm.Model{ID: 42},
		Title:       "Assemblea di Ateneo",
		StartDate:   time.Now().Add(48 * time.Hour),
		BookingOpen: true,
		Published:   true,
	}
	env.db.Create(&event)

	input := &BookEventInput{ID: 42}
	input.Cookie = cookie

	resp, err := handler.HandleBook(ctx, input)
	if err != nil {
		t.Fatalf("HandleBook returned error: %v", err)
	}
	if !resp.Body.Success {
		t.Fatalf("expected booking success, got %+v", resp.Body)
	}

	var registration models.Registration
	if err := env.db.Where("user_id = ? AND event_id = ?", user.ID, event.ID).First(&registration).Error; err != nil {
		t.Fatalf("expected registration row: %v", err)
	}
	if registration.Status != models.RegistrationRegistered {
		t.Errorf("expected status REGISTERED, got %s", registration.Status)
	}

	env.booking.Flush()
	if got := env.mailer.recipients(); len(got) != 1 || got[0] != "mario@example.it" {
		t.Errorf("expected one confirmation email to mario@example.it, got %v", got)
	}

	t.Run("SecondBookRejected", func(t *testing.T) {
		resp, err := handler.HandleBook(ctx, input)
		if err != nil {
			t.Fatalf("HandleBook returned error: %v", err)
		}
		if resp.Body.Success || resp.Body.Reason != booking.ReasonAlreadyRegistered {
			t.Errorf("expected ALREADY_REGISTERED, got %+v", resp.Body)
		}

		var count int64
		env.db.Model(&models.Registration{}).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one registration row, got %d", count)
		}
	})

	t.Run("AnonymousRejected", func(t *testing.T) {
		anon := &BookEventInput{ID: 42}
		if _, err := handler.HandleBook(ctx, anon); err == nil {
			t.Fatal("expected unauthorized for anonymous booking")
		}
	})
}

func TestDashboardCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	handler := env.bookingHandler()
	_, cookie := env.createUser(t, "mario@example.it", models.RoleUser, "")

	event := models.Event{Title: "Seminario", StartDate: time.Now().Add(time.Hour), BookingOpen: true, Published: true}
	env.db.Create(&event)

	dash := &DashboardInput{}
	dash.Cookie = cookie

	resp, err := handler.HandleDashboard(ctx, dash)
	if err != nil {
		t.Fatalf("HandleDashboard returned error: %v", err)
	}
	if len(resp.Body.Registrations) != 0 {
		t.Fatalf("expected empty dashboard, got %d entries", len(resp.Body.Registrations))
	}

	book := &BookEventInput{ID: event.ID}
	book.Cookie = cookie
	if bresp, err := handler.HandleBook(ctx, book); err != nil || !bresp.Body.Success {
		t.Fatalf("HandleBook failed: %v %+v", err, bresp)
	}

	// The booking invalidated the cached dashboard view.
	resp, err = handler.HandleDashboard(ctx, dash)
	if err != nil {
		t.Fatalf("second HandleDashboard returned error: %v", err)
	}
	if len(resp.Body.Registrations) != 1 {
		t.Fatalf("expected one dashboard entry after booking, got %d", len(resp.Body.Registrations))
	}
	if resp.Body.Registrations[0].Event.Title != "Seminario" {
		t.Errorf("expected event data in dashboard entry, got %q", resp.Body.Registrations[0].Event.Title)
	}

	cancel := &BookEventInput{ID: event.ID}
	cancel.Cookie = cookie
	if cresp, err := handler.HandleCancel(ctx, cancel); err != nil || !cresp.Body.Success {
		t.Fatalf("HandleCancel failed: %v %+v", err, cresp)
	}

	resp, err = handler.HandleDashboard(ctx, dash)
	if err != nil {
		t.Fatalf("third HandleDashboard returned error: %v", err)
	}
	if len(resp.Body.Registrations) != 0 {
		t.Errorf("expected empty dashboard after cancellation, got %d entries", len(resp.Body.Registrations))
	}
}

func TestAttendance(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	handler := env.bookingHandler()
	_, adminCookie := env.createUser(t, "admin@example.it", models.RoleAdminMorgana, "")

	student := models.User{
		Email: "studente@example.it", PasswordHash: "x",
		Name: "Lucia", Surname: "Bianchi",
		Department: "Economia", MatriculationNumber: "123456",
	}
	env.db.Create(&student)

	event := models.Event{Title: "Corso CFU", StartDate: time.Now(), BookingOpen: true, Published: true,
		Associations: models.AssociationSet{models.AssociationEconomia}}
	env.db.Create(&event)
	registration := models.Registration{UserID: student.ID, EventID: event.ID, Status: models.RegistrationRegistered}
	env.db.Create(&registration)

	t.Run("Export", func(t *testing.T) {
		input := &AttendanceInput{ID: event.ID}
		input.Cookie = adminCookie

		resp, err := handler.HandleAttendance(ctx, input)
		if err != nil {
			t.Fatalf("HandleAttendance returned error: %v", err)
		}
		if len(resp.Body.Rows) != 1 {
			t.Fatalf("expected one attendance row, got %d", len(resp.Body.Rows))
		}
		row := resp.Body.Rows[0]
		if row.Email != "studente@example.it" || row.MatriculationNumber != "123456" {
			t.Errorf("expected academic attributes in export, got %+v", row)
		}
	})

	t.Run("ValidateCFU", func(t *testing.T) {
		input := &UpdateAttendanceInput{ID: event.ID, RegistrationID: registration.ID}
		input.Cookie = adminCookie
		input.Body.Status = models.RegistrationCFUValidated

		if _, err := handler.HandleUpdateAttendance(ctx, input); err != nil {
			t.Fatalf("HandleUpdateAttendance returned error: %v", err)
		}

		var updated models.Registration
		env.db.First(&updated, registration.ID)
		if updated.Status != models.RegistrationCFUValidated {
			t.Errorf("expected CFU_VALIDATED, got %s", updated.Status)
		}
	})

	t.Run("ForeignNetworkAdminForbidden", func(t *testing.T) {
		_, cookie := env.createUser(t, "scipog@example.it", models.RoleAdminNetwork, models.AssociationScipog)
		input := &AttendanceInput{ID: event.ID}
		input.Cookie = cookie

		if _, err := handler.HandleAttendance(ctx, input); err == nil {
			t.Fatal("expected forbidden for foreign network admin")
		}
	})
}
