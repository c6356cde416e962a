package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"authgate/internal/authn"
	"authgate/internal/config"
	"authgate/internal/db"
	"authgate/internal/httpserver"
	"authgate/internal/identity"
	"authgate/internal/logging"
	"authgate/internal/password"
	"authgate/internal/revoke"
	"authgate/internal/token"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the authentication HTTP server",
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"))
		},
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)

	conn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hasher := password.NewHasher(cfg.Password)
	store := identity.NewStore(conn)
	if cfg.SeedPath != "" {
		if err := store.SeedFromFile(ctx, cfg.SeedPath, hasher); err != nil {
			return fmt.Errorf("seed identities: %w", err)
		}
	}

	codec := token.NewCodec([]byte(cfg.SigningSecret), cfg.ClockSkew)
	issuer := token.NewIssuer(codec, cfg.TokenTTL)
	denylist, err := revoke.NewMemory(cfg.TokenTTL + cfg.ClockSkew)
	if err != nil {
		return fmt.Errorf("build denylist: %w", err)
	}
	authSvc := authn.NewService(store, hasher, issuer, codec, denylist,
		logging.Component(logger, "authn"))

	handler := httpserver.NewRouter(logging.Component(logger, "http"), authSvc)
	server := httpserver.New(cfg.HTTPAddr, handler, logging.Component(logger, "http"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
