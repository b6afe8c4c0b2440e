package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
	"selkie-backend/pkg/graphdb"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapWriteError(t *testing.T) {
	emailErr := &neo4j.Neo4jError{
		Code: constraintViolation,
		Msg:  "Node(12) already exists with label `User` and property `email` = 'a@x.com'",
	}
	assert.ErrorIs(t, mapWriteError(emailErr), authdomain.ErrDuplicateEmail)

	googleErr := &neo4j.Neo4jError{
		Code: constraintViolation,
		Msg:  "Node(12) already exists with label `User` and property `google_id` = 'g123'",
	}
	assert.ErrorIs(t, mapWriteError(googleErr), authdomain.ErrDuplicateExternalID)

	emailLooksLikeProperty := mapWriteError(&neo4j.Neo4jError{
		Code: constraintViolation,
		Msg:  "Node(13) already exists with label `User` and property `email` = 'google_id@x.com'",
	})
	assert.ErrorIs(t, emailLooksLikeProperty, authdomain.ErrDuplicateEmail)
	assert.NotErrorIs(t, emailLooksLikeProperty, authdomain.ErrDuplicateExternalID)

	other := errors.New("connection reset")
	mapped := mapWriteError(other)
	assert.ErrorIs(t, mapped, other)
	assert.NotErrorIs(t, mapped, authdomain.ErrDuplicateEmail)
}

func TestUserFromProps(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	u := userFromProps(graphdb.Props{
		"user_id":         "u-1",
		"email":           "a@x.com",
		"hashed_password": "$2a$10$abc",
		"created_at":      created,
	})

	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Nil(t, u.Name)
	assert.Nil(t, u.ExternalID)
	assert.True(t, u.HasPassword())
	assert.Equal(t, created, u.CreatedAt)
}

// newIntegrationRepo connects to a disposable Neo4j when NEO4J_TEST_URI is set.
func newIntegrationRepo(t *testing.T) UserRepository {
	t.Helper()
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}

	m := graphdb.NewManager(graphdb.Config{
		URI:        uri,
		Username:   os.Getenv("NEO4J_TEST_USER"),
		Password:   os.Getenv("NEO4J_TEST_PASSWORD"),
		MaxRetries: 1,
	})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	require.NoError(t, m.EnsureSchema(context.Background(), UserSchema...))
	return NewUserRepository(m)
}

func TestUserRepository_Integration(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	email := uuid.NewString() + "@x.com"
	googleID := "g-" + uuid.NewString()

	missing, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Create(ctx, email, "A", "$2a$10$digest")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, email, "Again", "$2a$10$digest")
	assert.ErrorIs(t, err, authdomain.ErrDuplicateEmail)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "A", found.DisplayName())

	linked, err := repo.LinkExternalID(ctx, created.ID, googleID)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = repo.LinkExternalID(ctx, created.ID, "g-other")
	require.NoError(t, err)
	assert.False(t, linked, "external id is never reassigned")

	linked, err = repo.LinkExternalID(ctx, uuid.NewString(), "g-nobody")
	require.NoError(t, err)
	assert.False(t, linked)

	byGoogle, err := repo.FindByExternalID(ctx, googleID)
	require.NoError(t, err)
	require.NotNil(t, byGoogle)
	assert.Equal(t, created.ID, byGoogle.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, email, byID.Email)

	external, err := repo.CreateFromExternalIdentity(ctx, uuid.NewString()+"@x.com", "B", "g-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, external.HasPassword())
	require.NotNil(t, external.ExternalID)
}
