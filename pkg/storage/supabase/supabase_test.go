// File: pkg/storage/supabase/supabase_test.go
package supabase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"storemigrate/pkg/storage"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "service-role"

// fakeAPI serves the subset of the storage REST API the client uses
type fakeAPI struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]map[string]storedObject
	lists   []listRequest
}

type storedObject struct {
	data        []byte
	contentType string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		buckets: make(map[string]bool),
		objects: make(map[string]map[string]storedObject),
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testKey || r.Header.Get("apikey") != testKey {
		writeError(w, http.StatusUnauthorized, "401", "invalid key")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, storagePath)
	switch {
	case path == "/bucket" && r.Method == http.MethodGet:
		var out []bucketResource
		for name, public := range f.buckets {
			out = append(out, bucketResource{ID: name, Name: name, Public: public})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		_ = json.NewEncoder(w).Encode(out)

	case path == "/bucket" && r.Method == http.MethodPost:
		var req createBucketRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := f.buckets[req.Name]; ok {
			writeError(w, http.StatusBadRequest, "409", "The resource already exists")
			return
		}
		f.buckets[req.Name] = req.Public
		f.objects[req.Name] = make(map[string]storedObject)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": req.Name})

	case strings.HasPrefix(path, "/object/list/") && r.Method == http.MethodPost:
		bucket := strings.TrimPrefix(path, "/object/list/")
		var req listRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lists = append(f.lists, req)
		_ = json.NewEncoder(w).Encode(f.list(bucket, req))

	case strings.HasPrefix(path, "/object/"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(path, "/object/"), "/")
		objects, ok := f.objects[bucket]
		if !ok {
			writeError(w, http.StatusBadRequest, "404", "Bucket not found")
			return
		}
		if r.Method == http.MethodGet {
			obj, ok := objects[key]
			if !ok {
				writeError(w, http.StatusBadRequest, "404", "Object not found")
				return
			}
			w.Header().Set("Content-Type", obj.contentType)
			_, _ = w.Write(obj.data)
			return
		}
		if _, exists := objects[key]; exists && r.Header.Get("x-upsert") != "true" {
			writeError(w, http.StatusBadRequest, "409", "The resource already exists")
			return
		}
		data, _ := io.ReadAll(r.Body)
		objects[key] = storedObject{data: data, contentType: r.Header.Get("Content-Type")}
		_ = json.NewEncoder(w).Encode(map[string]string{"Key": bucket + "/" + key})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) list(bucket string, req listRequest) []map[string]interface{} {
	prefix := req.Prefix
	if prefix != "" {
		prefix += "/"
	}
	seen := make(map[string]bool)
	var names []string
	files := make(map[string]storedObject)
	for key, obj := range f.objects[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		if !isDir {
			files[name] = obj
		}
	}
	sort.Strings(names)

	var out []map[string]interface{}
	for i, name := range names {
		if i < req.Offset || len(out) == req.Limit {
			continue
		}
		if obj, ok := files[name]; ok {
			out = append(out, map[string]interface{}{
				"name":     name,
				"id":       "id-" + name,
				"metadata": map[string]interface{}{"size": len(obj.data), "mimetype": obj.contentType},
			})
		} else {
			out = append(out, map[string]interface{}{"name": name, "id": nil, "metadata": nil})
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{StatusCode: code, Error: "Error", Message: message})
}

func newTestClient(t *testing.T, api *fakeAPI) *SupabaseStorage {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := NewSupabaseStorage(server.URL, testKey, slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	require.NoError(t, err)
	return client
}

func TestNewSupabaseStorageValidates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewSupabaseStorage("not a url", testKey, logger, nil)
	assert.Error(t, err)
	_, err = NewSupabaseStorage("https://x.supabase.co", "", logger, nil)
	assert.Error(t, err)
}

func TestBuckets(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "avatars", true))
	require.NoError(t, client.CreateBucket(ctx, "docs", false))

	err := client.CreateBucket(ctx, "docs", false)
	assert.ErrorIs(t, err, storage.ErrBucketExists)

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "avatars", buckets[0].Name)
	assert.True(t, buckets[0].Public)
	assert.False(t, buckets[1].Public)
}

func TestObjectsRoundTrip(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, client.CreateBucket(ctx, "photos", false))

	require.NoError(t, client.UploadObject(ctx, "photos", "2024/a b.png", []byte("png"), "image/png", true))
	require.NoError(t, client.UploadObject(ctx, "photos", "top.txt", []byte("txt"), "text/plain", true))

	err := client.UploadObject(ctx, "photos", "top.txt", []byte("again"), "text/plain", false)
	assert.ErrorIs(t, err, storage.ErrObjectExists)

	require.NoError(t, client.UploadObject(ctx, "photos", "top.txt", []byte("again"), "text/plain", true))

	root, err := client.ListObjects(ctx, "photos", "", storage.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []storage.ListItem{
		{Name: "2024", IsDir: true},
		{Name: "top.txt", ContentType: "text/plain", Size: 5},
	}, root)

	nested, err := client.ListObjects(ctx, "photos", "2024", storage.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, "a b.png", nested[0].Name)

	obj, err := client.DownloadObject(ctx, "photos", "2024/a b.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = client.DownloadObject(ctx, "photos", "missing.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListObjectsSendsPaging(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, client.CreateBucket(ctx, "b", false))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, client.UploadObject(ctx, "b", "dir/"+k, []byte(k), "text/plain", true))
	}

	items, err := storage.ListAll(ctx, client, "b", "dir", 2)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	require.Len(t, api.lists, 2)
	assert.Equal(t, listRequest{Prefix: "dir", Limit: 2, Offset: 0, SortBy: listSortBy{Column: "name", Order: "asc"}}, api.lists[0])
	assert.Equal(t, 2, api.lists[1].Offset)
}

func TestUnauthorized(t *testing.T) {
	server := httptest.NewServer(newFakeAPI())
	t.Cleanup(server.Close)
	client, err := NewSupabaseStorage(server.URL, "wrong", slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	require.NoError(t, err)

	_, err = client.ListBuckets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 401")
}
