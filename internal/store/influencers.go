package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rehan959/info-tracker-sub000/profile"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Influencer is one tracked profile with dashboard metadata on top of
// the resolved fields.
type Influencer struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Username        string           `json:"username"`
	Platform        profile.Platform `json:"platform"`
	Followers       int              `json:"followers"`
	Following       int              `json:"following"`
	Posts           int              `json:"postsCount"`
	Bio             string           `json:"bio"`
	ProfileURL      string           `json:"profileUrl"`
	ProfilePicture  string           `json:"profilePicture"`
	IsPrivate       bool             `json:"isPrivate"`
	IsVerified      bool             `json:"isVerified"`
	Category        string           `json:"category"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	LastRefreshedAt *time.Time       `json:"lastRefreshedAt,omitempty"`
}

// Activity is one entry in an influencer's audit trail.
type Activity struct {
	ID           string    `json:"id"`
	InfluencerID string    `json:"influencerId"`
	Kind         string    `json:"kind"`
	Detail       string    `json:"detail"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListQuery filters and pages the influencer list.
type ListQuery struct {
	Q        string
	Platform profile.Platform
	Limit    int
	Offset   int
}

// Stats summarizes the tracked set for the dashboard.
type Stats struct {
	Total          int                      `json:"total"`
	TotalFollowers int64                    `json:"totalFollowers"`
	Verified       int                      `json:"verified"`
	ByPlatform     map[profile.Platform]int `json:"byPlatform"`
}

// Repo provides influencer persistence on top of a SQLite handle.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const influencerColumns = `id, name, username, platform, followers, following, posts_count,
	bio, profile_url, profile_picture, is_private, is_verified, category, notes,
	created_at, updated_at, last_refreshed_at`

// Create inserts a new influencer and returns it with generated fields.
func (r *Repo) Create(ctx context.Context, inf *Influencer) (*Influencer, error) {
	if inf.ID == "" {
		inf.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inf.CreatedAt = now
	inf.UpdatedAt = now

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO influencers (id, name, username, platform, followers, following, posts_count,
			bio, profile_url, profile_picture, is_private, is_verified, category, notes,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inf.ID, inf.Name, inf.Username, inf.Platform, inf.Followers, inf.Following, inf.Posts,
		inf.Bio, inf.ProfileURL, inf.ProfilePicture, inf.IsPrivate, inf.IsVerified,
		inf.Category, inf.Notes, inf.CreatedAt, inf.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert influencer: %w", err)
	}
	return inf, nil
}

// GetByID returns one influencer or ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (*Influencer, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE id = ?`, id)
	return scanInfluencer(row)
}

// GetByRef returns the influencer tracked under a platform/username pair.
func (r *Repo) GetByRef(ctx context.Context, platform profile.Platform, username string) (*Influencer, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE platform = ? AND username = ?`,
		platform, username)
	return scanInfluencer(row)
}

// List returns influencers matching the query, newest first.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Influencer, error) {
	var (
		where []string
		args  []any
	)
	if q.Q != "" {
		where = append(where, "(name LIKE ? OR username LIKE ?)")
		pat := "%" + q.Q + "%"
		args = append(args, pat, pat)
	}
	if q.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, q.Platform)
	}

	query := `SELECT ` + influencerColumns + ` FROM influencers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}
	defer rows.Close()

	var out []*Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	return out, rows.Err()
}

// Update applies editable metadata fields. Resolved profile fields are
// only changed through ApplyProfile.
func (r *Repo) Update(ctx context.Context, id string, name, category, notes string) (*Influencer, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE influencers SET name = ?, category = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, name, category, notes, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update influencer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// ApplyProfile overwrites the resolved fields from a fresh resolution
// and stamps last_refreshed_at.
func (r *Repo) ApplyProfile(ctx context.Context, id string, p *profile.Profile) (*Influencer, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE influencers SET name = ?, followers = ?, following = ?, posts_count = ?,
			bio = ?, profile_url = ?, profile_picture = ?, is_private = ?, is_verified = ?,
			updated_at = ?, last_refreshed_at = ?
		WHERE id = ?
	`, p.Name, p.Followers, p.Following, p.Posts, p.Bio, p.ProfileURL, p.ProfilePicture,
		p.IsPrivate, p.IsVerified, now, now, id)
	if err != nil {
		return nil, fmt.Errorf("apply profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an influencer and, via cascade, its activities.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM influencers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete influencer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddActivity appends an audit entry for an influencer.
func (r *Repo) AddActivity(ctx context.Context, influencerID, kind, detail string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO activities (id, influencer_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), influencerID, kind, detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivities returns the newest activities across all influencers.
func (r *Repo) RecentActivities(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, influencer_id, kind, detail, created_at
		FROM activities ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.InfluencerID, &a.Kind, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Stats aggregates dashboard numbers in one pass per dimension.
func (r *Repo) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{ByPlatform: make(map[profile.Platform]int)}

	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(followers), 0), COALESCE(SUM(is_verified), 0)
		FROM influencers
	`)
	if err := row.Scan(&s.Total, &s.TotalFollowers, &s.Verified); err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT platform, COUNT(*) FROM influencers GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("stats by platform: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p profile.Platform
			n int
		)
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("scan platform stat: %w", err)
		}
		s.ByPlatform[p] = n
	}
	return s, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanInfluencer(row scannable) (*Influencer, error) {
	var (
		inf       Influencer
		refreshed sql.NullTime
	)
	err := row.Scan(&inf.ID, &inf.Name, &inf.Username, &inf.Platform,
		&inf.Followers, &inf.Following, &inf.Posts,
		&inf.Bio, &inf.ProfileURL, &inf.ProfilePicture,
		&inf.IsPrivate, &inf.IsVerified, &inf.Category, &inf.Notes,
		&inf.CreatedAt, &inf.UpdatedAt, &refreshed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan influencer: %w", err)
	}
	if refreshed.Valid {
		t := refreshed.Time
		inf.LastRefreshedAt = &t
	}
	return &inf, nil
}
