package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, email, name string) (User, error) {
	u := User{ID: uuid.NewString(), Email: email, Name: name}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, email, name) VALUES ($1,$2,$3)
		RETURNING created_at`,
		u.ID, u.Email, u.Name,
	).Scan(&u.CreatedAt)
	return u, err
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, total_spent, membership_id, created_at
		FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.TotalSpent, &u.MembershipID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, total_spent, membership_id, created_at
		FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.TotalSpent, &u.MembershipID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ListTiers returns the ladder ascending by threshold, the order PickTier
// expects.
func (r *Repo) ListTiers(ctx context.Context) ([]Tier, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, min_spending, discount_percent
		FROM memberships ORDER BY min_spending`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.MinSpending, &t.DiscountPercent); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) CreateTier(ctx context.Context, t Tier) (Tier, error) {
	t.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO memberships(id, name, min_spending, discount_percent)
		VALUES ($1,$2,$3,$4)`,
		t.ID, t.Name, t.MinSpending, t.DiscountPercent)
	return t, err
}
