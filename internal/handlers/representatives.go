package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/morgana-orum/portal-api/internal/tenancy"
	"github.com/morgana-orum/portal-api/pkg/validator"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RepresentativeHandler struct {
	db   *gorm.DB
	auth *auth.AuthHandler
	log  *zerolog.Logger
}

func NewRepresentativeHandler(db *gorm.DB, authHandler *auth.AuthHandler, log *zerolog.Logger) *RepresentativeHandler {
	return &RepresentativeHandler{db: db, auth: authHandler, log: log}
}

type ListRepresentativesInput struct {
	Association string `query:"association" required:"false"`
	Department  string `query:"department" required:"false" doc:"Substring match on the department field"`
}

type ListRepresentativesOutput struct {
	Body struct {
		Representatives []models.Representative `json:"representatives"`
	}
}

func (h *RepresentativeHandler) HandleList(ctx context.Context, input *ListRepresentativesInput) (*ListRepresentativesOutput, error) {
	q := h.db.WithContext(ctx).Model(&models.Representative{}).Order("surname ASC")
	if input.Association != "" {
		q = q.Where("association = ?", input.Association)
	}
	if input.Department != "" {
		q = q.Where("department LIKE ?", "%"+input.Department+"%")
	}

	var reps []models.Representative
	if err := q.Find(&reps).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list representatives")
	}

	out := &ListRepresentativesOutput{}
	out.Body.Representatives = reps
	return out, nil
}

type GetRepresentativeInput struct {
	ID uint `path:"id"`
}

func (h *RepresentativeHandler) HandleGet(ctx context.Context, input *GetRepresentativeInput) (*RepresentativeOutput, error) {
	var rep models.Representative
	if err := h.db.WithContext(ctx).First(&rep, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Representative not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load representative")
	}
	return &RepresentativeOutput{Body: rep}, nil
}

// RepresentativePayload is the admin create/update form body.
type RepresentativePayload struct {
	Name        string             `json:"name" validate:"required"`
	Surname     string             `json:"surname" validate:"required"`
	Email       string             `json:"email,omitempty"`
	Department  string             `json:"department,omitempty"`
	Position    string             `json:"position,omitempty"`
	Association models.Association `json:"association,omitempty"`
	Image       string             `json:"image,omitempty"`
}

func (p *RepresentativePayload) apply(rep *models.Representative) {
	rep.Name = p.Name
	rep.Surname = p.Surname
	rep.Email = p.Email
	rep.Department = p.Department
	rep.Position = p.Position
	rep.Association = p.Association
	rep.Image = p.Image
}

type CreateRepresentativeInput struct {
	auth.AuthInput
	Body RepresentativePayload
}

type RepresentativeOutput struct {
	Body models.Representative
}

func (h *RepresentativeHandler) HandleCreate(ctx context.Context, input *CreateRepresentativeInput) (*RepresentativeOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	var rep models.Representative
	input.Body.apply(&rep)

	if !tenancy.CanEditRepresentative(user, &rep) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	if err := h.db.WithContext(ctx).Create(&rep).Error; err != nil {
		h.log.Error().Err(err).Msg("failed to create representative")
		return nil, huma.Error500InternalServerError("Failed to create representative")
	}

	return &RepresentativeOutput{Body: rep}, nil
}

type UpdateRepresentativeInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body RepresentativePayload
}

func (h *RepresentativeHandler) HandleUpdate(ctx context.Context, input *UpdateRepresentativeInput) (*RepresentativeOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	var rep models.Representative
	if err := h.db.WithContext(ctx).First(&rep, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Representative not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load representative")
	}

	// The permission check runs against the stored record, so a network
	// admin cannot claim a record by rewriting its association first.
	if !tenancy.CanEditRepresentative(user, &rep) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	input.Body.apply(&rep)
	if err := h.db.WithContext(ctx).Save(&rep).Error; err != nil {
		h.log.Error().Err(err).Uint("representative_id", rep.ID).Msg("failed to update representative")
		return nil, huma.Error500InternalServerError("Failed to update representative")
	}

	return &RepresentativeOutput{Body: rep}, nil
}

type DeleteRepresentativeInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *RepresentativeHandler) HandleDelete(ctx context.Context, input *DeleteRepresentativeInput) (*MessageOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var rep models.Representative
	if err := h.db.WithContext(ctx).First(&rep, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Representative not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load representative")
	}

	if !tenancy.CanEditRepresentative(user, &rep) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	if err := h.db.WithContext(ctx).Unscoped().Delete(&rep).Error; err != nil {
		h.log.Error().Err(err).Uint("representative_id", rep.ID).Msg("failed to delete representative")
		return nil, huma.Error500InternalServerError("Failed to delete representative")
	}

	out := &MessageOutput{}
	out.Body.Message = "Representative deleted"
	return out, nil
}
