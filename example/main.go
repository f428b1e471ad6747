package main

import (
	"context"
	"github.com/Maksumys/dbschema"
	"log"
	"log/slog"
	"os"
)

func main() {
	migrator, err := dbschema.NewMigrationsManager(
		dbschema.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))),
		dbschema.WithSkipMissing(true),
	)
	if err != nil {
		log.Fatalln(err)
	}

	err = migrator.RegisterTarget("shop", dbschema.Target{
		Engine:       dbschema.EnginePostgreSQL,
		Host:         "127.0.0.1",
		User:         "admin",
		Password:     "admin",
		Database:     "test",
		Path:         "./migrations/postgresql",
		PreMigration: "SET search_path TO public;",
		Options:      map[string]interface{}{"sslmode": "disable"},
	})
	if err != nil {
		log.Fatalln(err)
	}

	err = migrator.RegisterTarget("legacy", dbschema.Target{
		Engine:   dbschema.EngineMySQL,
		User:     "root",
		Password: "root",
		Database: "legacy",
		Path:     "./migrations/mysql",
	})
	if err != nil {
		log.Fatalln(err)
	}

	ctx := context.Background()

	if err = migrator.InitLedger(ctx, ""); err != nil {
		log.Fatalln(err)
	}

	if err = migrator.Migrate(ctx, ""); err != nil {
		log.Fatalln(err)
	}

	statuses, err := migrator.Status(ctx, "")
	if err != nil {
		log.Fatalln(err)
	}
	for _, status := range statuses {
		log.Printf("%s: applied %v, pending %v", status.Tag, status.Applied, status.Pending)
	}
}
