package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/plan"
	subscriptiondomain "github.com/heysheet/heysheet/internal/subscription/domain"
	dbpkg "github.com/heysheet/heysheet/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	SubSvc subscriptiondomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	subSvc subscriptiondomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("form.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		subSvc: p.SubSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFormRequest) (*domain.Form, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	formSlug := strings.ToLower(strings.TrimSpace(req.Slug))
	if formSlug == "" {
		formSlug = slug.Make(title)
	}
	if !slugPattern.MatchString(formSlug) {
		return nil, domain.ErrInvalidSlug
	}

	sub, err := s.subSvc.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	limits := plan.LimitsFor(sub.Plan)

	count, err := s.repo.CountByUser(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limits.MaxForms) {
		return nil, domain.ErrFormLimit
	}

	form := &domain.Form{
		ID:                s.genID.Generate(),
		UserID:            req.UserID,
		Title:             title,
		Slug:              formSlug,
		SpreadsheetID:     strings.TrimSpace(req.SpreadsheetID),
		SheetTitle:        strings.TrimSpace(req.SheetTitle),
		GoogleAccountID:   parseOptionalID(req.GoogleAccountID),
		NotionEnabled:     req.NotionEnabled,
		NotionDatabaseID:  strings.TrimSpace(req.NotionDatabaseID),
		NotionAccountID:   parseOptionalID(req.NotionAccountID),
		SlackEnabled:      req.SlackEnabled,
		SlackChannel:      strings.TrimSpace(req.SlackChannel),
		SlackAccountID:    parseOptionalID(req.SlackAccountID),
		EmailEnabled:      req.EmailEnabled,
		NotificationEmail: strings.TrimSpace(req.NotificationEmail),
		UploadsEnabled:    req.UploadsEnabled,
		MaxFiles:          req.MaxFiles,
		AllowedMimeTypes:  datatypes.NewJSONSlice(req.AllowedMimeTypes),
		RedirectURL:       strings.TrimSpace(req.RedirectURL),
		AllowedDomains:    datatypes.NewJSONSlice(req.AllowedDomains),
		Active:            true,
	}

	if err := s.repo.Insert(ctx, s.db, form); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}
	return form, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Form, error) {
	form, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}
	return form, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Form, error) {
	form, err := s.repo.FindBySlug(ctx, s.db, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}
	return form, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Form, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, userID string, req domain.UpdateFormRequest) (*domain.Form, error) {
	form, err := s.ownedForm(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		form.Title = title
	}
	if req.SpreadsheetID != nil {
		form.SpreadsheetID = strings.TrimSpace(*req.SpreadsheetID)
	}
	if req.SheetTitle != nil {
		form.SheetTitle = strings.TrimSpace(*req.SheetTitle)
	}
	if req.NotionEnabled != nil {
		form.NotionEnabled = *req.NotionEnabled
	}
	if req.NotionDatabaseID != nil {
		form.NotionDatabaseID = strings.TrimSpace(*req.NotionDatabaseID)
	}
	if req.SlackEnabled != nil {
		form.SlackEnabled = *req.SlackEnabled
	}
	if req.SlackChannel != nil {
		form.SlackChannel = strings.TrimSpace(*req.SlackChannel)
	}
	if req.EmailEnabled != nil {
		form.EmailEnabled = *req.EmailEnabled
	}
	if req.NotificationEmail != nil {
		form.NotificationEmail = strings.TrimSpace(*req.NotificationEmail)
	}
	if req.UploadsEnabled != nil {
		form.UploadsEnabled = *req.UploadsEnabled
	}
	if req.MaxFiles != nil {
		form.MaxFiles = *req.MaxFiles
	}
	if req.AllowedMimeTypes != nil {
		form.AllowedMimeTypes = datatypes.NewJSONSlice(*req.AllowedMimeTypes)
	}
	if req.RedirectURL != nil {
		form.RedirectURL = strings.TrimSpace(*req.RedirectURL)
	}
	if req.AllowedDomains != nil {
		form.AllowedDomains = datatypes.NewJSONSlice(*req.AllowedDomains)
	}

	if err := s.repo.Update(ctx, s.db, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *Service) Deactivate(ctx context.Context, id snowflake.ID, userID string) error {
	form, err := s.ownedForm(ctx, id, userID)
	if err != nil {
		return err
	}
	form.Active = false
	return s.repo.Update(ctx, s.db, form)
}

func (s *Service) ownedForm(ctx context.Context, id snowflake.ID, userID string) (*domain.Form, error) {
	form, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}
	if form.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return form, nil
}

func parseOptionalID(value string) *snowflake.ID {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return nil
	}
	return &id
}
