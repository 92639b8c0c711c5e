// Command admin runs maintenance tasks against the GophCoach database.
//
//	admin createuser [-username name] [-email addr] [-first-name s] [-last-name s] [-staff]
//
// Database settings are read like the server's (-d, DATABASE_DSN, -c, .env).
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophcoach/internal/flagx"
	"github.com/dmitrijs2005/gophcoach/internal/server/admin"
	"github.com/dmitrijs2005/gophcoach/internal/server/config"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/repomanager"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "createuser" {
		fmt.Fprintln(os.Stderr, "usage: admin createuser [-username name] [-email addr] [-first-name s] [-last-name s] [-staff]")
		os.Exit(2)
	}

	if err := run(context.Background(), config.LoadConfig(), os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so that deferred cleanup happens.
func run(ctx context.Context, cfg *config.Config, args []string) error {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	cmd := admin.NewCreateUserCommand(rm.Users(db), os.Stdin, os.Stdout)
	_, err = cmd.Run(ctx, flagx.FilterArgs(args, admin.CreateUserFlags))
	return err
}
