package recognition

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

const smallDictionary = `
types:
  cigar:
    brands:
      - name: "  Cohiba "
        aliases: [COHIBA, cohiba]
        models: [Behike]
    sizes:
      - name: Robusto
    category_labels: [Cigar]
`

func TestDefaultDictionary(t *testing.T) {
	d, err := DefaultDictionary()
	require.NoError(t, err)

	for _, pt := range []models.ProductType{models.ProductCigar, models.ProductBeer, models.ProductWine} {
		td, err := d.For(pt)
		require.NoError(t, err, pt)
		assert.NotEmpty(t, td.Brands, pt)
		assert.NotEmpty(t, td.CategoryLabels, pt)
	}

	_, err = d.For(models.ProductType("sake"))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParseDictionary(t *testing.T) {
	d, err := ParseDictionary([]byte(smallDictionary))
	require.NoError(t, err)

	td, err := d.For(models.ProductCigar)
	require.NoError(t, err)
	require.Len(t, td.Brands, 1)
	assert.Equal(t, "cohiba", td.Brands[0].Name)
	assert.Equal(t, []string{"cohiba"}, td.Brands[0].Aliases)
	assert.Equal(t, []string{"behike"}, td.Brands[0].Models)
	require.Len(t, td.Sizes, 1)
	assert.Equal(t, []string{"robusto"}, td.Sizes[0].Aliases)
	assert.Equal(t, []string{"cigar"}, td.CategoryLabels)

	t.Run("invalid", func(t *testing.T) {
		for name, doc := range map[string]string{
			"not yaml":     "types: [",
			"no types":     "types: {}",
			"unknown type": "types:\n  sake:\n    brands: []\n",
			"nameless":     "types:\n  cigar:\n    brands:\n      - aliases: [x]\n",
		} {
			_, err := ParseDictionary([]byte(doc))
			assert.Error(t, err, name)
		}
	})
}

func TestLoadDictionary(t *testing.T) {
	d, err := LoadDictionary("")
	require.NoError(t, err)
	assert.Len(t, d.Types, 3)

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDictionaryStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallDictionary), 0o600))

	store, err := NewDictionaryStore(path, setupTestLogger())
	require.NoError(t, err)
	td, err := store.Current().For(models.ProductCigar)
	require.NoError(t, err)
	require.Len(t, td.Brands, 1)

	// Битый файл не заменяет рабочий словарь
	require.NoError(t, os.WriteFile(path, []byte("types: ["), 0o600))
	require.Error(t, store.Reload())
	td, err = store.Current().For(models.ProductCigar)
	require.NoError(t, err)
	assert.Len(t, td.Brands, 1)
}

func TestDictionaryStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallDictionary), 0o600))

	store, err := NewDictionaryStore(path, setupTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	updated := smallDictionary + `
  beer:
    brands:
      - name: Guinness
    category_labels: [beer]
`
	// Запись повторяется, пока watcher не подхватит изменение
	assert.Eventually(t, func() bool {
		if _, err := store.Current().For(models.ProductBeer); err == nil {
			return true
		}
		_ = os.WriteFile(path, []byte(updated), 0o600)
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestDictionaryStore_WatchWithoutFile(t *testing.T) {
	store, err := NewDictionaryStore("", setupTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, store.Watch(ctx))
}
