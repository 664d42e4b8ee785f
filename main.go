package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kontak/internal/app"
	"kontak/internal/config"
	"kontak/internal/database"
	"kontak/internal/models"
	"kontak/internal/repositories"
	"kontak/internal/services"
	"kontak/pkg/rabbitmq"

	"github.com/olekukonko/tablewriter"
	"github.com/streadway/amqp"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand(out io.Writer) *cli.Command {
	serve := &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP server",
		Action: runServe,
	}
	return &cli.Command{
		Name:   "kontak",
		Usage:  "Contact form submission service",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Optional dotenv file loaded before the environment",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Store driver: memory, sqlite, postgres, mongo or badger (overrides STORE_DRIVER)",
			},
			&cli.StringFlag{
				Name:  "database-url",
				Usage: "SQL DSN (overrides DATABASE_URL)",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "HTTP listen address (overrides PORT)",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			serve,
			{
				Name:   "migrate",
				Usage:  "Apply SQL migrations for the sqlite or postgres store",
				Action: runMigrate,
			},
			{
				Name:  "list",
				Usage: "Print the most recent submissions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: repositories.DefaultListLimit,
						Usage: "Number of submissions to print (max 50)",
					},
				},
				Action: runList,
			},
			{
				Name:   "notify",
				Usage:  "Consume submission.created events from RabbitMQ and log them",
				Action: runNotify,
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("env-file"), map[string]string{
		"STORE_DRIVER": cmd.String("store"),
		"DATABASE_URL": cmd.String("database-url"),
		"PORT":         cmd.String("port"),
	})
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// --- Initialize Store ---
	repo, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set. Submission events will not be published.")
	}

	service := services.NewSubmissionService(repo, publisher)
	server := app.NewApp(cfg, service)

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s (environment: %s, store: %s)", cfg.Port, cfg.Environment, cfg.StoreDriver)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down server...", sig)
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreSQLite && cfg.StoreDriver != config.StorePostgres {
		return fmt.Errorf("migrate needs the sqlite or postgres store, got %q", cfg.StoreDriver)
	}

	db, err := database.OpenGORM(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(ctx, db, cfg.StoreDriver); err != nil {
		return err
	}
	log.Printf("Migrations applied to %s store", cfg.StoreDriver)
	return nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	submissions, err := repo.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	renderSubmissions(cmd.Root().Writer, submissions)
	return nil
}

// renderSubmissions prints submissions as a table. IP addresses are never shown.
func renderSubmissions(w io.Writer, submissions []models.Submission) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Created At", "Name", "Email", "Message"})
	table.SetAutoWrapText(false)
	for _, s := range submissions {
		table.Append([]string{
			s.ID,
			s.CreatedAt.Format(time.RFC3339),
			s.Name,
			s.Email,
			truncate(strings.ReplaceAll(s.Message, "\n", " "), 60),
		})
	}
	table.Render()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func runNotify(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for notify")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		return err
	}
	defer mqClient.Close()

	done, err := mqClient.ConsumeSubmissionEvents(logSubmissionEvent)
	if err != nil {
		return err
	}
	log.Printf("Waiting for submission events on %s. To exit press CTRL+C", rabbitmq.SubmissionQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case <-done:
		return fmt.Errorf("RabbitMQ delivery channel closed")
	}
	log.Println("Notifier stopped")
	return nil
}

// logSubmissionEvent logs one delivery. Undecodable bodies are dropped rather
// than requeued, since redelivery cannot fix them.
func logSubmissionEvent(msg amqp.Delivery) error {
	event, err := decodeSubmissionEvent(msg.Body)
	if err != nil {
		log.Printf("Dropping malformed submission event %d: %v", msg.DeliveryTag, err)
		return nil
	}
	log.Printf("New submission %s from %s <%s> at %s", event.ID, event.Name, event.Email, event.CreatedAt.Format(time.RFC3339))
	return nil
}

func decodeSubmissionEvent(body []byte) (models.SubmissionCreatedEvent, error) {
	var event models.SubmissionCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("decode submission event: %w", err)
	}
	if event.ID == "" {
		return event, fmt.Errorf("decode submission event: missing id")
	}
	return event, nil
}
