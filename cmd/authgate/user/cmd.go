// Package user implements operator subcommands against the credential store.
// Password hashing happens here, on the administrative path, never inside
// request handling.
package user

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"authgate/internal/config"
	"authgate/internal/db"
	"authgate/internal/identity"
	"authgate/internal/password"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage identities in the credential store",
		Subcommands: []*cli.Command{
			addCmd(),
			banCmd(),
			roleCmd(),
		},
	}
}

func addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create an identity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "handle", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "role", Value: string(identity.RoleStandard)},
		},
		Action: func(c *cli.Context) error {
			role, err := identity.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			return withStore(c, func(ctx context.Context, store *identity.Store, hasher password.Hasher) error {
				hash, err := hasher.Hash(c.String("password"))
				if err != nil {
					return err
				}
				id, err := store.Create(ctx, c.String("handle"), hash, role)
				if err != nil {
					return err
				}
				fmt.Printf("created identity %d (%s)\n", id.ID, id.Handle)
				return nil
			})
		},
	}
}

func banCmd() *cli.Command {
	return &cli.Command{
		Name:  "ban",
		Usage: "Set or clear the ban flag on an identity",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Required: true},
			&cli.BoolFlag{Name: "clear", Usage: "lift the ban instead of imposing it"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(ctx context.Context, store *identity.Store, _ password.Hasher) error {
				return store.SetBanned(ctx, c.Int64("id"), !c.Bool("clear"))
			})
		},
	}
}

func roleCmd() *cli.Command {
	return &cli.Command{
		Name:  "role",
		Usage: "Change an identity's role",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Required: true},
			&cli.StringFlag{Name: "role", Required: true},
		},
		Action: func(c *cli.Context) error {
			role, err := identity.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			return withStore(c, func(ctx context.Context, store *identity.Store, _ password.Hasher) error {
				return store.UpdateRole(ctx, c.Int64("id"), role)
			})
		},
	}
}

func withStore(c *cli.Context, fn func(context.Context, *identity.Store, password.Hasher) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	conn, err := db.Open(c.Context, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(c.Context, identity.NewStore(conn), password.NewHasher(cfg.Password))
}
