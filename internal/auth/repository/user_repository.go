package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
	"selkie-backend/pkg/graphdb"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// UserSchema holds the uniqueness constraints the user queries rely on.
var UserSchema = []string{
	"CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
	"CREATE CONSTRAINT user_google_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.google_id IS UNIQUE",
	"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.user_id IS UNIQUE",
}

const (
	findUserByEmail    = `MATCH (u:User {email: $email}) RETURN properties(u) AS u LIMIT 1`
	findUserByGoogleID = `MATCH (u:User {google_id: $google_id}) RETURN properties(u) AS u LIMIT 1`
	findUserByID       = `MATCH (u:User {user_id: $user_id}) RETURN properties(u) AS u LIMIT 1`

	createUser = `CREATE (u:User {
	user_id: $user_id,
	email: $email,
	name: $name,
	hashed_password: $hashed_password,
	google_id: $google_id,
	created_at: $created_at
})
RETURN properties(u) AS u`

	linkGoogleID = `MATCH (u:User {user_id: $user_id})
WHERE u.google_id IS NULL
SET u.google_id = $google_id
RETURN u.user_id AS user_id`
)

type userRepository struct {
	db graphdb.Transactor
}

// NewUserRepository creates a new instance of UserRepository backed by the graph store.
func NewUserRepository(db graphdb.Transactor) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	return r.findOne(ctx, findUserByEmail, map[string]any{"email": email})
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*authdomain.User, error) {
	return r.findOne(ctx, findUserByGoogleID, map[string]any{"google_id": externalID})
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*authdomain.User, error) {
	return r.findOne(ctx, findUserByID, map[string]any{"user_id": userID})
}

func (r *userRepository) Create(ctx context.Context, email, name, hashedPassword string) (*authdomain.User, error) {
	return r.create(ctx, email, name, graphdb.NullIfEmpty(hashedPassword), nil)
}

func (r *userRepository) CreateFromExternalIdentity(ctx context.Context, email, name, externalID string) (*authdomain.User, error) {
	return r.create(ctx, email, name, nil, graphdb.NullIfEmpty(externalID))
}

func (r *userRepository) LinkExternalID(ctx context.Context, userID, externalID string) (bool, error) {
	var linked bool
	_, err := r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, linkGoogleID, map[string]any{
			"user_id":   userID,
			"google_id": externalID,
		})
		if err != nil {
			return err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return err
		}
		linked = len(records) > 0
		return nil
	})
	if err != nil {
		return false, mapWriteError(err)
	}
	return linked, nil
}

func (r *userRepository) create(ctx context.Context, email, name string, hashedPassword, googleID any) (*authdomain.User, error) {
	var user *authdomain.User
	_, err := r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createUser, map[string]any{
			"user_id":         uuid.New().String(),
			"email":           email,
			"name":            graphdb.NullIfEmpty(name),
			"hashed_password": hashedPassword,
			"google_id":       googleID,
			"created_at":      time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		props, err := graphdb.FirstProps(ctx, res, "u")
		if err != nil {
			return err
		}
		if props == nil {
			return errors.New("create user returned no row")
		}
		user = userFromProps(props)
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return user, nil
}

func (r *userRepository) findOne(ctx context.Context, cypher string, params map[string]any) (*authdomain.User, error) {
	var user *authdomain.User
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return err
		}
		props, err := graphdb.FirstProps(ctx, res, "u")
		if err != nil {
			return err
		}
		if props != nil {
			user = userFromProps(props)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func userFromProps(p graphdb.Props) *authdomain.User {
	return &authdomain.User{
		ID:             p.String("user_id"),
		Email:          p.String("email"),
		Name:           p.OptionalString("name"),
		HashedPassword: p.OptionalString("hashed_password"),
		ExternalID:     p.OptionalString("google_id"),
		CreatedAt:      p.Time("created_at"),
	}
}

// mapWriteError turns uniqueness violations into domain errors.
func mapWriteError(err error) error {
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) && nerr.Code == constraintViolation {
		if strings.Contains(nerr.Msg, "`google_id`") {
			return fmt.Errorf("%w: %s", authdomain.ErrDuplicateExternalID, nerr.Msg)
		}
		return fmt.Errorf("%w: %s", authdomain.ErrDuplicateEmail, nerr.Msg)
	}
	return fmt.Errorf("write user: %w", err)
}
