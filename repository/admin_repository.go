package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"

	"xposure-ticketing/models"
)

type AdminRepository struct {
	db *dbx.DB
}

func NewAdminRepository(db *dbx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.NewQuery(`SELECT * FROM admins WHERE username={:username}`).
		Bind(dbx.Params{"username": username}).
		WithContext(ctx).
		One(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

// Upsert creates the admin or rotates its password hash. Used by the
// startup seeding path.
func (r *AdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	res, err := r.db.NewQuery(`
		UPDATE admins SET password_hash={:hash} WHERE username={:username}
	`).Bind(dbx.Params{
		"hash":     admin.PasswordHash,
		"username": admin.Username,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.Insert("admins", dbx.Params{
		"id":            admin.ID,
		"username":      admin.Username,
		"password_hash": admin.PasswordHash,
		"created_at":    admin.CreatedAt,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}
