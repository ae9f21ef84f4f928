package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/internal/database"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/server"
	"github.com/testlify/tenderstack/services"
)

func main() {
	app := &cli.App{
		Name:  "tenderstack",
		Usage: "Tender email ingestion, classification and export service",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: runMigrate,
			},
			{
				Name:   "filter",
				Usage:  "Run a single filter and export cycle, then exit",
				Action: runFilter,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("config initialization failed: %w", err)
	}

	db, err := database.InitTenderstackDatabase(&database.DatabaseConfig{
		DBName:          cfg.TenderstackDatabaseConfig.DBName,
		Host:            cfg.TenderstackDatabaseConfig.Host,
		Port:            cfg.TenderstackDatabaseConfig.Port,
		User:            cfg.TenderstackDatabaseConfig.User,
		Password:        cfg.TenderstackDatabaseConfig.Password,
		MaxConn:         cfg.TenderstackDatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.TenderstackDatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.TenderstackDatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.TenderstackDatabaseConfig.LogLevel,
		SSLMode:         cfg.TenderstackDatabaseConfig.SSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("database initialization failed: %w", err)
	}

	return cfg, db, nil
}

func runServer(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Tenderstack starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	if err := srv.Run(); err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(cfg.TenderstackDatabaseConfig, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}

func runFilter(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		return fmt.Errorf("service initialization failed: %w", err)
	}

	result, err := svcs.FilterService.RunFilterCycle(context.Background())
	if err != nil {
		return fmt.Errorf("filter cycle failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
