package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

type fakeES struct {
	indexed map[string]map[string]any
	queries []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	switch {
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		var doc map[string]any
		_ = json.Unmarshal(body, &doc)
		f.indexed[strings.TrimPrefix(r.URL.Path, "/products/_doc/")] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		f.queries = append(f.queries, string(body))
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":2},"hits":[{"_source":{"id":3}},{"_source":{"id":1}}]}}`))
	default:
		_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`))
	}
}

func newTestIndex(t *testing.T) (*ESIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{indexed: map[string]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewESIndex(client, "products"), fake
}

func TestESIndex_IndexProduct(t *testing.T) {
	idx, fake := newTestIndex(t)

	err := idx.IndexProduct(context.Background(), models.Product{
		ID: 7, Name: "Mug", CategoryID: 2, Category: models.Category{ID: 2, Name: "Kitchen"}, Price: 1000,
	})
	require.NoError(t, err)

	doc := fake.indexed["7"]
	require.NotNil(t, doc)
	assert.Equal(t, "Mug", doc["name"])
	assert.Equal(t, "Kitchen", doc["category"])
}

func TestESIndex_Search(t *testing.T) {
	idx, fake := newTestIndex(t)

	total, ids, err := idx.Search(context.Background(), "mug", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uint{3, 1}, ids)
	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], `"multi_match"`)
}
