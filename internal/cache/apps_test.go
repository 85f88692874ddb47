package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type fakeAppSource struct {
	calls int
	apps  map[string]*repository.App
}

func (f *fakeAppSource) Get(_ context.Context, id string) (*repository.App, error) {
	f.calls++
	app, ok := f.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func newAppsCache(src *fakeAppSource) *Apps {
	return NewApps(src, NewMemory("", time.Minute), time.Minute)
}

func TestAppsReadThrough(t *testing.T) {
	src := &fakeAppSource{apps: map[string]*repository.App{
		"app-1": {ID: "app-1", Name: "agenda", IsEnabled: true},
	}}
	c := newAppsCache(src)
	ctx := context.Background()

	app, err := c.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "agenda", app.Name)
	assert.Equal(t, 1, src.calls)

	// Segundo hit sale del cache, no de la fuente.
	app, err = c.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "agenda", app.Name)
	assert.Equal(t, 1, src.calls)
}

func TestAppsMissesNotCached(t *testing.T) {
	src := &fakeAppSource{apps: map[string]*repository.App{}}
	c := newAppsCache(src)
	ctx := context.Background()

	_, err := c.Get(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = c.Get(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 2, src.calls, "un miss no se cachea")
}

// Rotar la API key tiene que cortar el acceso en el acto: la invalidación
// hace que la próxima lectura vea el hash nuevo sin esperar al TTL.
func TestAppsInvalidateAfterKeyRotation(t *testing.T) {
	oldHash, newHash := "phc-old", "phc-new"
	src := &fakeAppSource{apps: map[string]*repository.App{
		"app-1": {ID: "app-1", APIKeyHash: &oldHash, IsEnabled: true},
	}}
	c := newAppsCache(src)
	ctx := context.Background()

	app, err := c.Get(ctx, "app-1")
	require.NoError(t, err)
	require.NotNil(t, app.APIKeyHash)
	assert.Equal(t, oldHash, *app.APIKeyHash)

	src.apps["app-1"].APIKeyHash = &newHash
	c.Invalidate(ctx, "app-1")

	app, err = c.Get(ctx, "app-1")
	require.NoError(t, err)
	require.NotNil(t, app.APIKeyHash)
	assert.Equal(t, newHash, *app.APIKeyHash)
}
