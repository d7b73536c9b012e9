package bootstrapdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/backend/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCreatesFixtureSet(t *testing.T) {
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	summary, err := Seed(ctx, repos, Options{AdminPassword: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, Summary{AdminCreated: true, Forums: 2, Threads: 6, Articles: 1}, summary)

	admin, err := repos.Users.GetByUserName(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.HasRole(user.RoleAdmin))

	forums, err := repos.Forums.List(ctx)
	require.NoError(t, err)
	require.Len(t, forums, 2)

	page, err := repos.Articles.PublishedPage(ctx, repository.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Article.Published())
}

func TestSeedIsIdempotent(t *testing.T) {
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	_, err := Seed(ctx, repos, Options{AdminPassword: "hunter22"})
	require.NoError(t, err)

	again, err := Seed(ctx, repos, Options{AdminPassword: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, again)
}

func TestSeedRequiresPassword(t *testing.T) {
	db := repotest.NewDB(t)
	_, err := Seed(context.Background(), repository.NewRepositories(db), Options{})
	assert.Error(t, err)
}

func TestLoadFixturesFromDataDir(t *testing.T) {
	dir := t.TempDir()
	raw := `{"forums":[{"title":"Only","threads":[{"title":"t","content":"c"}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, fixtureFilename), []byte(raw), 0o600))

	fixtures, err := LoadFixtures(dir)
	require.NoError(t, err)
	require.Len(t, fixtures.Forums, 1)
	assert.Equal(t, "Only", fixtures.Forums[0].Title)
	assert.Nil(t, fixtures.Article)

	missing, err := LoadFixtures(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, missing.Forums, 2)
}
