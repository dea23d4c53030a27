package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	"github.com/sds-studio/sds/internal/catalog"
	"github.com/sds-studio/sds/internal/config"
	"github.com/sds-studio/sds/internal/contact/domain"
	"github.com/sds-studio/sds/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Cfg       config.Config
	Repo      domain.Repository
	Analytics analyticsdomain.Service
	Email     email.Provider
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	cfg       config.Config
	repo      domain.Repository
	analytics analyticsdomain.Service
	email     email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("contact.service"),
		genID:     p.GenID,
		cfg:       p.Cfg,
		repo:      p.Repo,
		analytics: p.Analytics,
		email:     p.Email,
	}
}

func (s *Service) Intake(ctx context.Context, req domain.IntakeRequest) (*domain.IntakeResult, error) {
	if strings.TrimSpace(req.Honeypot) != "" {
		// Bots get a success-shaped answer and nothing is persisted.
		s.log.Info("honeypot tripped, dropping submission", zap.String("ip", req.IPAddress))
		return &domain.IntakeResult{Dropped: true}, nil
	}

	name := sanitize(req.Name, 120)
	emailAddr := strings.ToLower(sanitize(req.Email, 200))
	phone := sanitize(req.Phone, 30)
	project := normalizeProjectType(sanitize(req.Project, 80))
	message := sanitize(req.Message, 4000)
	budget := sanitize(req.Budget, 80)
	timeline := sanitize(req.Timeline, 80)

	errs := domain.FieldErrors{}
	if name == "" {
		errs["name"] = "Le nom est requis."
	}
	if emailAddr == "" || !emailPattern.MatchString(emailAddr) {
		errs["email"] = "Email invalide."
	}
	if !validProjectType(project) {
		errs["project"] = "Le type de projet est requis."
	}
	if message == "" {
		errs["message"] = "Le message est requis."
	}
	if len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	contact := domain.Contact{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       emailAddr,
		Phone:       phone,
		Message:     message,
		ProjectType: project,
		Status:      domain.StatusNew,
		Source:      "contact_form",
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.UpsertLead(ctx, s.db, &contact); err != nil {
		return nil, err
	}

	// Lead is captured; everything below is best-effort.
	if err := s.analytics.Record(ctx, "contact_submitted", "/api/contact", contact.ID.String(), map[string]any{
		"project_type": project,
		"budget":       budget,
		"timeline":     timeline,
	}); err != nil {
		s.log.Warn("analytics record failed", zap.Error(err))
	}

	if to := strings.TrimSpace(s.cfg.Email.NotifyTo); to != "" {
		body := fmt.Sprintf(
			"<p>Nouvelle demande de contact</p><ul><li>Nom: %s</li><li>Email: %s</li><li>Projet: %s</li><li>Budget: %s</li></ul><p>%s</p>",
			name, emailAddr, project, budget, message,
		)
		if err := s.email.Send(ctx, []string{to}, "Nouvelle demande de contact", body); err != nil {
			s.log.Warn("contact notification email failed", zap.Error(err))
		}
	}

	return &domain.IntakeResult{Contact: &contact}, nil
}

func (s *Service) MarkWon(ctx context.Context, req domain.MarkWonRequest) (*domain.Contact, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if emailAddr == "" || !emailPattern.MatchString(emailAddr) {
		return nil, domain.ErrInvalidEmail
	}

	projectType := normalizeProjectType(req.ProjectType)
	if !validProjectType(projectType) {
		projectType = catalog.ProjectTypeVitrine
	}

	now := time.Now().UTC()
	contact := domain.Contact{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Email:       emailAddr,
		Phone:       strings.TrimSpace(req.Phone),
		Company:     strings.TrimSpace(req.Company),
		Message:     strings.TrimSpace(req.Message),
		ProjectType: projectType,
		Budget:      req.Budget,
		Status:      domain.StatusWon,
		Source:      req.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if contact.Name == "" {
		contact.Name = "Client"
	}

	id, err := s.repo.UpsertWon(ctx, s.db, &contact)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Contact, int64, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Contact, error) {
	contact, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, domain.ErrNotFound
	}
	return contact, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status string) (*domain.Contact, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func sanitize(input string, max int) string {
	out := strings.TrimSpace(tagPattern.ReplaceAllString(input, ""))
	if len(out) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimSpace(out[:cut])
	}
	return out
}

// normalizeProjectType accepts both the stored enum values and the short
// package-style aliases the public form sends.
func normalizeProjectType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "vitrine", "site_vitrine", "essentiel":
		return catalog.ProjectTypeVitrine
	case "professionnel", "site_professionnel", "pro":
		return catalog.ProjectTypeProfessionnel
	case "ecommerce", "e-commerce", "boutique":
		return catalog.ProjectTypeEcommerce
	default:
		return strings.ToUpper(strings.TrimSpace(value))
	}
}

func validProjectType(value string) bool {
	switch value {
	case catalog.ProjectTypeVitrine, catalog.ProjectTypeProfessionnel, catalog.ProjectTypeEcommerce:
		return true
	default:
		return false
	}
}
