package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kiroku/internal/config"
	notesSvc "kiroku/internal/domain/services/notes"
	"kiroku/internal/repository/postgres"
	postgresNotes "kiroku/internal/repository/postgres/notes"
	serviceCredits "kiroku/internal/service/credits"
	serviceNotes "kiroku/internal/service/notes"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtures struct {
	Notes []struct {
		Category string `yaml:"category"`
		Title    string `yaml:"title"`
		Content  string `yaml:"content"`
		Order    *int   `yaml:"order"`
	} `yaml:"notes"`
	Grants []struct {
		Amount int64  `yaml:"amount"`
		Reason string `yaml:"reason"`
	} `yaml:"grants"`
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed notes")
	clearData := flag.Bool("clear-data", false, "Clear the seed user's notes and credits (keep schema)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	userID := os.Getenv("SEED_USER_ID")
	if userID == "" && !*schemaOnly {
		log.Fatalf("SEED_USER_ID must be set (the auth user the fixtures belong to)")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	log.Println("🧹 Clearing existing data for seed user...")
	if err := clearUserData(ctx, pool, tables, userID); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	var fx fixtures
	if err := yaml.Unmarshal(fixturesYAML, &fx); err != nil {
		log.Fatalf("Failed to parse fixtures: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	noteRepo := postgresNotes.NewNoteRepository(repoConfig)
	versionRepo := postgresNotes.NewVersionRepository(repoConfig)
	creditRepo := postgres.NewCreditRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	noteService := serviceNotes.NewNoteService(noteRepo, versionRepo, txManager, logger)
	creditService := serviceCredits.NewCreditService(creditRepo, txManager, cfg.CreditsPerKiloToken, logger)

	log.Println("📝 Seeding notes...")
	for i, n := range fx.Notes {
		note, err := noteService.CreateNote(ctx, &notesSvc.CreateNoteRequest{
			UserID:   userID,
			Category: n.Category,
			Title:    n.Title,
			Content:  n.Content,
			Order:    n.Order,
		})
		if err != nil {
			log.Printf("❌ Failed to create note '%s': %v", n.Title, err)
			continue
		}
		log.Printf("✅ Created note %d/%d: %s (ID: %s)", i+1, len(fx.Notes), note.Title, note.ID)
	}

	log.Println("💳 Seeding credit grants...")
	for _, g := range fx.Grants {
		grant, err := creditService.Grant(ctx, userID, g.Amount, g.Reason)
		if err != nil {
			log.Printf("❌ Failed to create grant: %v", err)
			continue
		}
		log.Printf("✅ Granted %d credits (%s)", grant.Amount, grant.Reason)
	}

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createNotes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			sort_order INTEGER,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(user_id, category, title)
		)
	`
	if _, err := pool.Exec(ctx, createNotes); err != nil {
		return err
	}

	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.NoteVersions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			note_id UUID NOT NULL REFERENCES ` + tables.Notes + `(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(note_id, version)
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	createGrants := `
		CREATE TABLE IF NOT EXISTS ` + tables.CreditGrants + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			amount BIGINT NOT NULL,
			remaining BIGINT NOT NULL CHECK (remaining >= 0),
			reason TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createGrants); err != nil {
		return err
	}

	createUsage := `
		CREATE TABLE IF NOT EXISTS ` + tables.CreditUsage + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			credits BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsage); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_user ON ` + tables.Notes + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_user_category ON ` + tables.Notes + `(user_id, category)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `note_versions_note ON ` + tables.NoteVersions + `(note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `credit_grants_user ON ` + tables.CreditGrants + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `credit_usage_user_created ON ` + tables.CreditUsage + `(user_id, created_at DESC)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.NoteVersions,
		tables.Notes,
		tables.CreditUsage,
		tables.CreditGrants,
	}
	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}
	return nil
}

// clearUserData removes the seed user's rows. Versions go via the FK cascade.
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, userID string) error {
	for _, table := range []string{tables.Notes, tables.CreditUsage, tables.CreditGrants} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
			return err
		}
	}
	return nil
}
