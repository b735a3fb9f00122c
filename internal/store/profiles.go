package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"demo/interview/internal/model"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, email, username, first_name, last_name, password_hash,
	is_active, is_staff, is_superuser, is_admin, date_joined, last_login, avatar`

func (r *Repo) CreateProfile(ctx context.Context, p model.UserProfile) error {
	var username *string
	if p.Username != "" {
		username = &p.Username
	}
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO user_profiles (`+profileColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, p.ID, p.Email, username, p.FirstName, p.LastName, p.PasswordHash,
		p.IsActive, p.IsStaff, p.IsSuperuser, p.IsAdmin, p.DateJoined, p.LastLogin, p.Avatar)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *Repo) GetProfileByEmail(ctx context.Context, email string) (model.UserProfile, bool, error) {
	p, err := scanProfile(r.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE email=$1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, false, nil
		}
		return model.UserProfile{}, false, err
	}
	return p, true, nil
}

func (r *Repo) ListProfiles(ctx context.Context, f model.ProfileFilter) ([]model.UserProfile, error) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(email ILIKE $%[1]d OR first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR COALESCE(username, '') ILIKE $%[1]d)", n))
	}
	for _, flag := range []struct {
		col string
		v   *bool
	}{
		{"is_staff", f.IsStaff},
		{"is_active", f.IsActive},
		{"is_superuser", f.IsSuperuser},
		{"is_admin", f.IsAdmin},
	} {
		if flag.v == nil {
			continue
		}
		args = append(args, *flag.v)
		conds = append(conds, fmt.Sprintf("%s = $%d", flag.col, len(args)))
	}

	sql := `SELECT ` + profileColumns + ` FROM user_profiles`
	if len(conds) > 0 {
		sql += ` WHERE ` + strings.Join(conds, " AND ")
	}
	sql += ` ORDER BY email`

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row pgx.Row) (model.UserProfile, error) {
	var (
		p        model.UserProfile
		username *string
	)
	err := row.Scan(&p.ID, &p.Email, &username, &p.FirstName, &p.LastName, &p.PasswordHash,
		&p.IsActive, &p.IsStaff, &p.IsSuperuser, &p.IsAdmin, &p.DateJoined, &p.LastLogin, &p.Avatar)
	if err != nil {
		return model.UserProfile{}, err
	}
	if username != nil {
		p.Username = *username
	}
	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
