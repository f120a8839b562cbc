package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/quantityfield/internal/fixture"
	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

func TestDumpAndLoad(t *testing.T) {
	_, src := setupTestDB(t)
	ctx := context.Background()
	seedHayBales(t, src)
	require.NoError(t, src.CreateNullableBale(ctx, quantityfield.Decimal, &NullableBale{Name: "Empty"}))
	custom := CustomBale{}
	require.NoError(t, custom.Set("custom", 5))
	require.NoError(t, src.CreateCustomBale(ctx, &custom))

	dumped, err := src.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dumped, 6)
	assert.Equal(t, "bales.haybale", dumped[0].Model)
	assert.Equal(t, "100.0", dumped[0].Fields["weight"])
	assert.Equal(t, "283.49523125", dumped[1].Fields["weight"])
	assert.Nil(t, dumped[1].Fields["weight_int"])
	assert.Equal(t, "bales.nullablebaledecimal", dumped[4].Model)
	assert.Nil(t, dumped[4].Fields["compare"])
	assert.Equal(t, "5.0", dumped[5].Fields["custom"])

	for _, format := range fixture.Formats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, fixture.Serialize(format, dumped, &buf))
			objects, err := fixture.Deserialize(format, &buf)
			require.NoError(t, err)

			dst, dstStore := setupTestDB(t)
			err = dst.WithTx(ctx, func(s *Store) error {
				n, err := s.Load(ctx, objects, fixture.Options{})
				assert.Equal(t, len(objects), n)
				return err
			})
			require.NoError(t, err)

			reloaded, err := dstStore.Dump(ctx)
			require.NoError(t, err)
			if diff := cmp.Diff(dumped, reloaded); diff != "" {
				t.Errorf("dump after load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ReplacesAndRollsBack(t *testing.T) {
	db, store := setupTestDB(t)
	ctx := context.Background()

	objects := []fixture.Object{
		{Model: "bales.haybale", PK: 7, Fields: map[string]any{"name": "seven", "weight": "10 ounce"}},
		{Model: "bales.haybale", PK: 7, Fields: map[string]any{"name": "seven again", "weight": "1.5"}},
	}
	require.NoError(t, db.WithTx(ctx, func(s *Store) error {
		_, err := s.Load(ctx, objects, fixture.Options{})
		return err
	}))
	got, err := store.GetHayBale(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "seven again", got.Name)
	assert.Equal(t, "1.5 gram", got.Weight.String())

	bad := []fixture.Object{
		{Model: "bales.haybale", PK: 8, Fields: map[string]any{"name": "eight", "weight": "1"}},
		{Model: "bales.haybale", PK: 9, Fields: map[string]any{"name": "nine", "weight": "3 meter"}},
	}
	err = db.WithTx(ctx, func(s *Store) error {
		n, err := s.Load(ctx, bad, fixture.Options{})
		assert.Equal(t, 1, n)
		return err
	})
	require.Error(t, err)
	_, err = store.GetHayBale(ctx, 8)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Load(ctx, []fixture.Object{{Model: "bales.unknown", Fields: map[string]any{}}}, fixture.Options{})
	assert.ErrorContains(t, err, "unknown model")

	extra := []fixture.Object{{Model: "bales.haybale", Fields: map[string]any{"name": "x", "weight": "1", "colour": "red"}}}
	_, err = store.Load(ctx, extra, fixture.Options{})
	assert.ErrorContains(t, err, "no field")
	n, err := store.Load(ctx, extra, fixture.Options{IgnoreNonexistent: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
