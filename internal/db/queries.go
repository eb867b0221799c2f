package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries is the hand-written data access layer over the pgx pool.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type SketchRole string

const (
	SketchRoleOwner  SketchRole = "owner"
	SketchRoleEditor SketchRole = "editor"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Sketch struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SketchMember struct {
	SketchID string
	UserID   string
	Role     SketchRole
}

type MemberWithUser struct {
	UserID      string
	Role        SketchRole
	DisplayName string
	Email       string
}

type Snapshot struct {
	ID        string
	SketchID  string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

// --- users ---

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		p.ID, p.Email, p.Password, p.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// --- sketches ---

type CreateSketchParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateSketch(ctx context.Context, p CreateSketchParams) (Sketch, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO sketches (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, created_at, updated_at`,
		p.ID, p.Name, p.OwnerID)
	var s Sketch
	err := row.Scan(&s.ID, &s.Name, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) GetSketch(ctx context.Context, id string) (Sketch, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM sketches WHERE id = $1`, id)
	var s Sketch
	err := row.Scan(&s.ID, &s.Name, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListSketchesForUser(ctx context.Context, userID string) ([]Sketch, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT s.id, s.name, s.owner_id, s.created_at, s.updated_at
		FROM sketches s
		JOIN sketch_members m ON m.sketch_id = s.id
		WHERE m.user_id = $1
		ORDER BY s.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sketches []Sketch
	for rows.Next() {
		var s Sketch
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sketches = append(sketches, s)
	}
	return sketches, rows.Err()
}

func (q *Queries) DeleteSketch(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM sketches WHERE id = $1`, id)
	return err
}

// --- members ---

type AddSketchMemberParams struct {
	SketchID string
	UserID   string
	Role     SketchRole
}

func (q *Queries) AddSketchMember(ctx context.Context, p AddSketchMemberParams) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO sketch_members (sketch_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (sketch_id, user_id) DO NOTHING`,
		p.SketchID, p.UserID, p.Role)
	return err
}

type GetSketchMemberParams struct {
	SketchID string
	UserID   string
}

func (q *Queries) GetSketchMember(ctx context.Context, p GetSketchMemberParams) (SketchMember, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT sketch_id, user_id, role
		FROM sketch_members WHERE sketch_id = $1 AND user_id = $2`,
		p.SketchID, p.UserID)
	var m SketchMember
	err := row.Scan(&m.SketchID, &m.UserID, &m.Role)
	return m, err
}

func (q *Queries) ListSketchMembers(ctx context.Context, sketchID string) ([]MemberWithUser, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT m.user_id, m.role, u.display_name, u.email
		FROM sketch_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.sketch_id = $1`, sketchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []MemberWithUser
	for rows.Next() {
		var m MemberWithUser
		if err := rows.Scan(&m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type RemoveSketchMemberParams struct {
	SketchID string
	UserID   string
}

func (q *Queries) RemoveSketchMember(ctx context.Context, p RemoveSketchMemberParams) error {
	_, err := q.pool.Exec(ctx, `
		DELETE FROM sketch_members WHERE sketch_id = $1 AND user_id = $2`,
		p.SketchID, p.UserID)
	return err
}

// --- snapshots ---

type CreateSnapshotParams struct {
	ID       string
	SketchID string
	Version  int32
	Document json.RawMessage
}

func (q *Queries) CreateSnapshot(ctx context.Context, p CreateSnapshotParams) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, sketch_id, version, document)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sketch_id, version, document, created_at`,
		p.ID, p.SketchID, p.Version, p.Document)
	var s Snapshot
	err := row.Scan(&s.ID, &s.SketchID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}

func (q *Queries) GetLatestSnapshot(ctx context.Context, sketchID string) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, sketch_id, version, document, created_at
		FROM snapshots WHERE sketch_id = $1
		ORDER BY version DESC LIMIT 1`, sketchID)
	var s Snapshot
	err := row.Scan(&s.ID, &s.SketchID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}
