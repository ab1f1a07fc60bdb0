package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/config"
	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// environment holds the use cases every command shares. Sessions live only
// for the lifetime of the process.
type environment struct {
	cfg     *config.Config
	log     *logrus.Logger
	auth    domain.UserUseCase
	catalog domain.CatalogUseCase
	admin   domain.AdminUseCase
	cart    domain.CartUseCase

	// set when DATABASE_URL is configured
	database       *sql.DB
	reconciliation repository.ReconciliationRepository
}

func (e *environment) init(c *cli.Context) error {
	e.log = config.NewLogger(c.String("log-level"))
	cfg, err := config.LoadConfig(e.log)
	if err != nil {
		return err
	}
	e.cfg = cfg

	httpClient := clients.NewHTTPClient(cfg.HTTPClientTimeout)
	productClient := clients.NewProductHTTPClient(cfg.StoreAPIURL, httpClient, e.log)
	cartClient := clients.NewCartHTTPClient(cfg.StoreAPIURL, httpClient, e.log)
	userClient := clients.NewUserHTTPClient(cfg.StoreAPIURL, httpClient, e.log)

	sessions := repository.NewMemorySessionRepository(cfg.SessionTTL, e.log)
	e.auth = usecase.NewAuthUseCase(userClient, sessions, e.log)
	e.catalog = usecase.NewCatalogUseCase(productClient, e.log)
	e.admin = usecase.NewAdminUseCase(productClient, e.log)
	recorder, err := e.buildRecorder(c.Context)
	if err != nil {
		return err
	}
	e.cart = usecase.NewCartUseCase(cartClient, productClient, recorder, e.log)
	return nil
}

// buildRecorder writes partial failures to Postgres when DATABASE_URL is set,
// the same table the reconciliation command reads.
func (e *environment) buildRecorder(ctx context.Context) (domain.ReconciliationRecorder, error) {
	if e.cfg.DatabaseURL == "" {
		return repository.NewLogReconciliationRecorder(e.log), nil
	}
	database, err := db.Connect(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := repository.NewPostgresReconciliationRepository(database, e.log)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	e.database = database
	e.reconciliation = repo
	return repo, nil
}

func (e *environment) close() error {
	if e.database == nil {
		return nil
	}
	return e.database.Close()
}

// login opens a session with the global credentials and checks the role.
func (e *environment) login(c *cli.Context, role domain.Role) (*domain.Session, error) {
	email, password := c.String("email"), c.String("password")
	if email == "" || password == "" {
		return nil, cli.Exit("--email and --password (or STOREFRONT_EMAIL / STOREFRONT_PASSWORD) are required", 2)
	}
	session, err := e.auth.Login(c.Context, email, password)
	if err != nil {
		return nil, errors.New(domain.BannerMessage(err))
	}
	if session.User.Role != role {
		return nil, fmt.Errorf("this command needs a %s account, %s is %s", role, email, session.User.Role)
	}
	return session, nil
}

// withCart logs in as a user, loads the cart and runs fn under the session.
func (e *environment) withCart(c *cli.Context, fn func(ctx context.Context, s *domain.Session) error) error {
	session, err := e.login(c, domain.RoleUser)
	if err != nil {
		return err
	}
	return e.auth.WithSession(c.Context, session.Token, func(s *domain.Session) error {
		if err := e.cart.Load(c.Context, s.User, s.Cart); err != nil {
			return errors.New(s.Cart.Banner)
		}
		return fn(c.Context, s)
	})
}
