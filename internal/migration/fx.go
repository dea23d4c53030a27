package migration

import (
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	"github.com/sds-studio/sds/internal/config"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"github.com/sds-studio/sds/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite is the local and test path; gorm derives the
			// same schema the versioned SQL describes.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&contactdomain.Contact{},
				&projectdomain.Project{},
				&projectdomain.Task{},
				&invoicedomain.Invoice{},
				&paymentdomain.EventRecord{},
				&analyticsdomain.Event{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdmin(conn)
	}),
)
