package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user if none exists. The admin will be
// prompted to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@mon-site.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// A sample article so the public site is not empty in development.
	var articleID string
	err = db.QueryRow(`
		INSERT INTO articles (title, slug, published_date, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "Bienvenue", "bienvenue", "2003-01-01", adminID).Scan(&articleID)
	if err != nil {
		return fmt.Errorf("seed insert article: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO article_blocks (id, article_id, type, content, sort_index)
		VALUES
			(gen_random_uuid(), $1, 'title', 'Bienvenue', 0),
			(gen_random_uuid(), $1, 'paragraph', 'Ce site rassemble des souvenirs, en textes, photos et vidéos.', 1)
	`, articleID)
	if err != nil {
		return fmt.Errorf("seed insert blocks: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@mon-site.local",
		"password", "admin",
	)

	return nil
}
