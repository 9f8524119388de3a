package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"notesaas/internal/config"
	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"
	"notesaas/internal/services"
	"notesaas/pkg/database"
)

const seedPassword = "password"

type seedTenant struct {
	name string
	slug string
}

type seedNote struct {
	author  string
	title   string
	content string
	tags    []string
}

var (
	seedTenants = []seedTenant{
		{name: "Acme Corporation", slug: "acme"},
		{name: "Globex Corporation", slug: "globex"},
	}

	seedNotes = []seedNote{
		{
			author:  "admin@acme.test",
			title:   "Welcome to Acme Notes",
			content: "This is your first note in the Acme tenant. You can create up to 3 notes on the free plan.",
			tags:    []string{"welcome", "getting-started"},
		},
		{
			author:  "user@acme.test",
			title:   "Project Ideas",
			content: "Brainstorming ideas for our next project. Need to think about scalability and user experience.",
			tags:    []string{"project", "ideas"},
		},
		{
			author:  "admin@globex.test",
			title:   "Globex Corporation Notes",
			content: "Welcome to Globex Corporation notes system. This is a separate tenant from Acme.",
			tags:    []string{"welcome", "globex"},
		},
	}
)

func main() {
	reset := pflag.Bool("reset", false, "truncate tenants, users and notes before seeding")
	envFile := pflag.String("env", "", "optional env file to load instead of .env")
	pflag.Parse()

	var cfg *config.Config
	var err error
	if *envFile != "" {
		cfg, err = config.LoadWithPath(*envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	_ = logger.Init(&logger.Config{Level: "info", ServiceName: "notesaas-seed", Development: true})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if *reset {
		if err := truncate(ctx, pool); err != nil {
			logger.Fatal("failed to reset database", zap.Error(err))
		}
		logger.Info("cleared existing data")
	}

	if err := seed(ctx, cfg, pool); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

func truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE notes, users, tenants`)
	return err
}

func seed(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	noteRepo := repositories.NewNoteRepo(pool)

	tenantSvc := services.NewTenantService(tenantRepo, userRepo, noteRepo, nil, cfg.Auth.FreeNoteLimit)
	userSvc := services.NewUserService(userRepo, nil, cfg.Auth.BcryptCost)

	authors := map[string]*models.User{}
	for _, st := range seedTenants {
		tenant, err := tenantSvc.Provision(ctx, &services.CreateTenantRequest{Name: st.name, Slug: st.slug})
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			logger.Info("tenant already exists, skipping seed", zap.String("slug", st.slug))
			continue
		}
		if err != nil {
			return err
		}

		for _, u := range []struct {
			prefix string
			role   models.Role
		}{{"admin", models.RoleAdmin}, {"user", models.RoleMember}} {
			user, err := userSvc.Provision(ctx, &services.CreateUserRequest{
				TenantID: tenant.ID,
				Email:    u.prefix + "@" + st.slug + ".test",
				Password: seedPassword,
				Role:     u.role,
			})
			if err != nil {
				return err
			}
			authors[user.Email] = user
			logger.Info("created user", zap.String("email", user.Email), zap.String("role", user.Role.String()), zap.String("tenant", st.slug))
		}
	}

	for _, sn := range seedNotes {
		author, ok := authors[sn.author]
		if !ok {
			continue
		}
		note := &models.Note{
			ID:        uuid.New(),
			TenantID:  author.TenantID,
			CreatedBy: author.ID,
			Title:     sn.title,
			Content:   sn.content,
			Tags:      sn.tags,
		}
		if err := noteRepo.Create(ctx, note); err != nil {
			return err
		}
	}

	logger.Info("seed complete", zap.Int("users", len(authors)), zap.String("password", seedPassword))
	return nil
}
