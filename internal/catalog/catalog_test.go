package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []Item{
	{ID: "a", Name: "KIVIK Sofa", Description: "Three-seat sofa", Category: "Sofas"},
	{ID: "b", Name: "LACK Coffee table", Description: "black-brown", Category: "Tables"},
	{ID: "c", Name: "POÄNG Armchair", Description: "Bentwood frame", Category: "Chairs"},
	{ID: "a", Name: "duplicate", Category: "Sofas"},
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore(testItems)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "everything", filter: Filter{}, want: []string{"a", "b", "c"}},
		{name: "all_category", filter: Filter{Category: "All"}, want: []string{"a", "b", "c"}},
		{name: "category", filter: Filter{Category: "Tables"}, want: []string{"b"}},
		{name: "name_query", filter: Filter{Query: "sofa"}, want: []string{"a"}},
		{name: "description_query", filter: Filter{Query: "BENTWOOD"}, want: []string{"c"}},
		{name: "no_match", filter: Filter{Category: "Beds"}, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := store.List(ctx, tc.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestMemoryStoreGet(t *testing.T) {
	store := NewMemoryStore(testItems)

	item, err := store.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "KIVIK Sofa", item.Name)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Chairs", "Sofas", "Tables"}, Categories(testItems))
	assert.Empty(t, Categories(nil))
}

func TestLoaderEmbedded(t *testing.T) {
	items, err := Loader{}.Load(context.Background(), SourceEmbedded)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.ImageURL, item.ID)
		assert.NotEmpty(t, item.Category, item.ID)
	}

	fromEmpty, err := Loader{}.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, items, fromEmpty)
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","name":"Stool","category":"Chairs","ikeaUrl":"https://ikea.example/x"}]`), 0o600))

	items, err := Loader{}.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Stool", items[0].Name)

	_, err = Loader{}.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoaderRejectsInvalidItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"","name":"Stool"}]`), 0o600))

	_, err := Loader{}.Load(context.Background(), path)
	assert.ErrorContains(t, err, "id and name are required")
}

type fakeBucket struct {
	bucket, key string
	body        string
	err         error
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestLoaderS3(t *testing.T) {
	bucket := &fakeBucket{body: `[{"id":"s3-1","name":"Rug","category":"Decor"}]`}
	var received S3Config
	loader := Loader{
		S3: S3Config{Region: "eu-north-1", Endpoint: "http://minio:9000", ForcePathStyle: true},
		newS3: func(_ context.Context, cfg S3Config) (objectGetter, error) {
			received = cfg
			return bucket, nil
		},
	}

	items, err := loader.Load(context.Background(), "s3://catalogs/furniture/products.json")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "catalogs", bucket.bucket)
	assert.Equal(t, "furniture/products.json", bucket.key)
	assert.Equal(t, "eu-north-1", received.Region)
	assert.True(t, received.ForcePathStyle)
}

func TestLoaderS3Errors(t *testing.T) {
	loader := Loader{newS3: func(context.Context, S3Config) (objectGetter, error) {
		return &fakeBucket{err: errors.New("access denied")}, nil
	}}

	_, err := loader.Load(context.Background(), "s3://catalogs/products.json")
	assert.ErrorContains(t, err, "access denied")

	_, err = loader.Load(context.Background(), "s3://catalogs")
	assert.ErrorContains(t, err, "s3://bucket/key")
}

func TestNewStoreWithoutDatabase(t *testing.T) {
	store, err := NewStore(context.Background(), "", SourceEmbedded, Loader{})
	require.NoError(t, err)

	_, ok := store.(*MemoryStore)
	assert.True(t, ok)

	items, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
