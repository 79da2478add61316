package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
)

const (
	loginMethodPassword = "password"
	minPasswordLen      = 8
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
)

const userColumns = `id, open_id, name, email, password, login_method, role, created_at, updated_at, last_signed_in`

// Users stores password accounts. The account whose email matches
// ownerEmail is created with the admin role.
type Users struct {
	db         *sqlx.DB
	ownerEmail string
	now        func() time.Time
}

func NewUsers(db *sqlx.DB, ownerEmail string) *Users {
	return &Users{
		db:         db,
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Users) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return domain.User{}, apperr.Validation("name", "is required")
	case !strings.Contains(email, "@"):
		return domain.User{}, apperr.Validation("email", "must be a valid email address")
	case len(password) < minPasswordLen:
		return domain.User{}, apperr.Validationf("password", "must have at least %d characters", minPasswordLen)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	role := domain.RoleUser
	if s.ownerEmail != "" && email == s.ownerEmail {
		role = domain.RoleAdmin
	}
	now := s.now()
	u := domain.User{
		OpenID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		LoginMethod:  loginMethodPassword,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO users (open_id, name, email, password, login_method, role, created_at, updated_at, last_signed_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		u.OpenID, u.Name, u.Email, u.Password, u.LoginMethod, u.Role, u.CreatedAt, u.UpdatedAt, u.LastSignedIn).Scan(&u.ID)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, apperr.Classify("register user", err)
	}
	u.Password = ""
	return u, nil
}

// Authenticate checks the password for email and records the sign in.
func (s *Users) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, apperr.Classify("authenticate", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	if s.ownerEmail != "" && u.Email == s.ownerEmail {
		u.Role = domain.RoleAdmin
	}
	u.LastSignedIn = s.now()
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET last_signed_in = ?, role = ? WHERE id = ?`), u.LastSignedIn, u.Role, u.ID); err != nil {
		return domain.User{}, apperr.Classify("record sign in", err)
	}
	u.Password = ""
	return u, nil
}

func (s *Users) Get(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return domain.User{}, apperr.Classify("get user", err)
	}
	u.Password = ""
	return u, nil
}

// FindByEmail returns the account registered under email.
func (s *Users) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperr.NotFound("user", 0)
	}
	if err != nil {
		return domain.User{}, apperr.Classify("find user", err)
	}
	u.Password = ""
	return u, nil
}
