//go:build integration

package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	client, db, err := Connect(ctx, Config{
		URI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Database: "tracker_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestUserRepository(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	admin := &domain.User{
		ID: "u1", Email: "Admin@Example.com", Name: "Admin", Role: domain.RoleAdmin,
		Credential: domain.HashedCredential{Hash: []byte("$2a$04$abc")}, CreatedAt: now, UpdatedAt: now,
	}
	tech := &domain.User{
		ID: "u2", Email: "tech@example.com", Name: "Tech", Role: domain.RoleTechnician,
		Credential: domain.LegacyPlaintextCredential{Secret: "tech123"}, CreatedAt: now.Add(time.Second), UpdatedAt: now,
	}
	require.NoError(t, repo.Insert(ctx, admin))
	require.NoError(t, repo.Insert(ctx, tech))

	t.Run("email is unique regardless of case", func(t *testing.T) {
		dup := &domain.User{ID: "u3", Email: " ADMIN@example.com", Role: domain.RoleUser,
			Credential: domain.LegacyPlaintextCredential{Secret: "x"}, CreatedAt: now}
		require.ErrorIs(t, repo.Insert(ctx, dup), domain.ErrDuplicateIdentity)
	})

	t.Run("lookup by email and role", func(t *testing.T) {
		got, err := repo.FindByEmailAndRole(ctx, "admin@EXAMPLE.com", domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, admin.Credential, got.Credential)

		_, err = repo.FindByEmailAndRole(ctx, "admin@example.com", domain.RoleTechnician)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("update secret", func(t *testing.T) {
		next := domain.HashedCredential{Hash: []byte("$2a$04$new")}
		require.NoError(t, repo.UpdateSecret(ctx, "u2", next))
		got, err := repo.FindByID(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, domain.Credential(next), got.Credential)

		require.ErrorIs(t, repo.UpdateSecret(ctx, "missing", next), domain.ErrUserNotFound)
	})

	t.Run("update fields rejects a taken email", func(t *testing.T) {
		email := "ADMIN@example.com"
		_, err := repo.UpdateFields(ctx, "u2", domain.UserFields{Email: &email})
		require.ErrorIs(t, err, domain.ErrDuplicateIdentity)

		name := "Technician"
		got, err := repo.UpdateFields(ctx, "u2", domain.UserFields{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Technician", got.Name)
		assert.Equal(t, "tech@example.com", got.Email)
	})

	t.Run("list and delete", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "u1", all[0].ID)

		require.NoError(t, repo.Delete(ctx, "u2"))
		require.ErrorIs(t, repo.Delete(ctx, "u2"), domain.ErrUserNotFound)
	})
}

func TestIssueCollection(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	issues := NewIssueCollection(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	first := domain.Issue{ID: "i1", Title: "Leak", Status: domain.IssuePending, CreatedAt: now}
	second := domain.Issue{ID: "i2", Title: "Fuse", Status: domain.IssuePending, CreatedAt: now.Add(time.Minute)}

	require.NoError(t, issues.Insert(ctx, second))
	require.NoError(t, issues.Insert(ctx, first))
	require.ErrorIs(t, issues.Insert(ctx, first), domain.ErrRecordConflict)

	err := issues.InsertUnless(ctx, domain.Issue{ID: "i3", Title: "Leak", CreatedAt: now}, func(e domain.Issue) bool {
		return e.Title == "Leak"
	})
	require.ErrorIs(t, err, domain.ErrRecordConflict)

	all, err := issues.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "i1", all[0].ID)

	updated, err := issues.Update(ctx, "i1", func(i *domain.Issue) error {
		i.Status = domain.IssueSolved
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueSolved, updated.Status)

	got, err := issues.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueSolved, got.Status)

	_, err = issues.UpdateUnless(ctx, "i1", func(i *domain.Issue) error {
		i.Title = "Fuse"
		return nil
	}, func(e domain.Issue) bool { return e.Title == "Fuse" })
	require.ErrorIs(t, err, domain.ErrRecordConflict)

	_, err = issues.UpdateUnless(ctx, "i1", func(i *domain.Issue) error { return nil },
		func(e domain.Issue) bool { return e.Title == "Leak" })
	require.NoError(t, err)

	require.NoError(t, issues.Delete(ctx, "i1"))
	_, err = issues.Get(ctx, "i1")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
	require.ErrorIs(t, issues.Delete(ctx, "i1"), domain.ErrRecordNotFound)
}
