package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/analytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, event, page, sessionID string, properties map[string]any) error {
	props := datatypes.JSON("{}")
	if len(properties) > 0 {
		raw, err := json.Marshal(properties)
		if err != nil {
			return err
		}
		props = datatypes.JSON(raw)
	}

	row := domain.Event{
		ID:         s.genID.Generate(),
		Event:      event,
		Page:       page,
		SessionID:  sessionID,
		Properties: props,
		CreatedAt:  time.Now().UTC(),
	}

	return s.db.WithContext(ctx).Create(&row).Error
}
