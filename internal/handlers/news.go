package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/morgana-orum/portal-api/internal/notifier"
	"github.com/morgana-orum/portal-api/internal/queries"
	"github.com/morgana-orum/portal-api/internal/tenancy"
	"github.com/morgana-orum/portal-api/pkg/validator"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type NewsHandler struct {
	db         *gorm.DB
	auth       *auth.AuthHandler
	dispatcher *notifier.Dispatcher
	log        *zerolog.Logger
}

func NewNewsHandler(db *gorm.DB, authHandler *auth.AuthHandler, dispatcher *notifier.Dispatcher, log *zerolog.Logger) *NewsHandler {
	return &NewsHandler{db: db, auth: authHandler, dispatcher: dispatcher, log: log}
}

type ListNewsInput struct {
	Search      string `query:"search" required:"false"`
	Category    string `query:"category" required:"false"`
	Year        int    `query:"year" required:"false"`
	Association string `query:"association" required:"false" doc:"Brand scope to list under"`
}

type ListNewsOutput struct {
	Body struct {
		News []models.News `json:"news"`
	}
}

// HandleList is the public news listing: published, publish date reached,
// scoped by the requested association when one is given.
func (h *NewsHandler) HandleList(ctx context.Context, input *ListNewsInput) (*ListNewsOutput, error) {
	var news []models.News
	err := h.db.WithContext(ctx).Model(&models.News{}).
		Scopes(
			queries.Status(queries.StatusPublished, time.Now()),
			queries.Search(input.Search),
			queries.NewsCategory(input.Category),
			queries.Year(input.Year),
			queries.VisibleUnder(models.Association(input.Association)),
		).
		Order("publish_date DESC").
		Find(&news).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list news")
	}

	out := &ListNewsOutput{}
	out.Body.News = news
	return out, nil
}

type AdminListNewsInput struct {
	auth.AuthInput
	Search   string `query:"search" required:"false"`
	Category string `query:"category" required:"false"`
	Status   string `query:"status" required:"false" enum:"published,draft,scheduled,"`
	Year     int    `query:"year" required:"false"`
}

func (h *NewsHandler) HandleAdminList(ctx context.Context, input *AdminListNewsInput) (*ListNewsOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var news []models.News
	err = h.db.WithContext(ctx).Model(&models.News{}).
		Scopes(
			queries.Search(input.Search),
			queries.NewsCategory(input.Category),
			queries.Status(input.Status, time.Now()),
			queries.Year(input.Year),
			queries.ScopedForAdmin(user),
		).
		Order("publish_date DESC").
		Find(&news).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list news")
	}

	out := &ListNewsOutput{}
	out.Body.News = news
	return out, nil
}

type GetNewsInput struct {
	ID uint `path:"id"`
}

type GetNewsOutput struct {
	Body models.News
}

func (h *NewsHandler) HandleGet(ctx context.Context, input *GetNewsInput) (*GetNewsOutput, error) {
	var article models.News
	if err := h.db.WithContext(ctx).First(&article, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("News not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load news")
	}
	if !article.Published {
		return nil, huma.Error404NotFound("News not found")
	}
	return &GetNewsOutput{Body: article}, nil
}

// NewsPayload is the admin create/update form body.
type NewsPayload struct {
	Title         string    `json:"title" validate:"required,max=200"`
	TitleEn       string    `json:"title_en,omitempty"`
	Description   string    `json:"description,omitempty"`
	DescriptionEn string    `json:"description_en,omitempty"`
	Content       string    `json:"content,omitempty"`
	ContentEn     string    `json:"content_en,omitempty"`
	Category      string    `json:"category,omitempty"`
	Tags          string    `json:"tags,omitempty"`
	Image         string    `json:"image,omitempty"`
	PublishDate   time.Time `json:"publish_date" validate:"required"`
	Published     bool      `json:"published,omitempty"`
	Associations  string    `json:"associations" validate:"association" doc:"Comma-joined brand tags"`
}

func (p *NewsPayload) apply(article *models.News) {
	article.Title = p.Title
	article.TitleEn = p.TitleEn
	article.Description = p.Description
	article.DescriptionEn = p.DescriptionEn
	article.Content = p.Content
	article.ContentEn = p.ContentEn
	article.Category = p.Category
	article.Tags = p.Tags
	article.Image = p.Image
	article.PublishDate = p.PublishDate
	article.Published = p.Published
	article.Associations = models.ParseAssociationSet(p.Associations)
	article.Association = ""
}

type CreateNewsInput struct {
	auth.AuthInput
	Body NewsPayload
}

func (h *NewsHandler) HandleCreate(ctx context.Context, input *CreateNewsInput) (*GetNewsOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	set := models.ParseAssociationSet(input.Body.Associations)
	if !tenancy.CapabilitiesFor(user, set).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var article models.News
	input.Body.apply(&article)

	if err := h.db.WithContext(ctx).Create(&article).Error; err != nil {
		h.log.Error().Err(err).Msg("failed to create news")
		return nil, huma.Error500InternalServerError("Failed to create news")
	}

	if article.Published {
		h.dispatcher.OnPublish(newsItem(&article))
	}

	return &GetNewsOutput{Body: article}, nil
}

type UpdateNewsInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body NewsPayload
}

func (h *NewsHandler) HandleUpdate(ctx context.Context, input *UpdateNewsInput) (*GetNewsOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	var article models.News
	if err := h.db.WithContext(ctx).First(&article, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("News not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load news")
	}

	caps := tenancy.CapabilitiesFor(user, article.AssociationList())
	if !caps.Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}
	newSet := models.ParseAssociationSet(input.Body.Associations)
	if !caps.Reassign && !sameSet(newSet, article.AssociationList()) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	wasPublished := article.Published
	input.Body.apply(&article)

	if err := h.db.WithContext(ctx).Save(&article).Error; err != nil {
		h.log.Error().Err(err).Uint("news_id", article.ID).Msg("failed to update news")
		return nil, huma.Error500InternalServerError("Failed to update news")
	}

	if !wasPublished && article.Published {
		h.dispatcher.OnPublish(newsItem(&article))
	}

	return &GetNewsOutput{Body: article}, nil
}

type DeleteNewsInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *NewsHandler) HandleDelete(ctx context.Context, input *DeleteNewsInput) (*MessageOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var article models.News
	if err := h.db.WithContext(ctx).First(&article, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("News not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load news")
	}

	if !tenancy.CapabilitiesFor(user, article.AssociationList()).Delete {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	if err := h.db.WithContext(ctx).Unscoped().Delete(&article).Error; err != nil {
		h.log.Error().Err(err).Uint("news_id", article.ID).Msg("failed to delete news")
		return nil, huma.Error500InternalServerError("Failed to delete news")
	}

	out := &MessageOutput{}
	out.Body.Message = "News deleted"
	return out, nil
}

type DuplicateNewsInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleDuplicate copies an article as an unpublished draft.
func (h *NewsHandler) HandleDuplicate(ctx context.Context, input *DuplicateNewsInput) (*GetNewsOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var article models.News
	if err := h.db.WithContext(ctx).First(&article, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("News not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load news")
	}

	if !tenancy.CapabilitiesFor(user, article.AssociationList()).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	clone := article
	clone.Model = gorm.Model{}
	clone.Title = article.Title + " (copia)"
	clone.Published = false
	clone.Associations = article.AssociationList()
	clone.Association = ""

	if err := h.db.WithContext(ctx).Create(&clone).Error; err != nil {
		h.log.Error().Err(err).Uint("news_id", article.ID).Msg("failed to duplicate news")
		return nil, huma.Error500InternalServerError("Failed to duplicate news")
	}

	return &GetNewsOutput{Body: clone}, nil
}

func newsItem(article *models.News) notifier.Item {
	return notifier.Item{
		Type:         models.NotificationNews,
		ID:           article.ID,
		Title:        article.Title,
		Message:      article.Description,
		Associations: article.AssociationList(),
	}
}
