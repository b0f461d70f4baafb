// File: internal/testutil/mocks/memory_store.go
package mocks

import (
	"context"
	"fmt"
	"sort"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"
	"strings"
	"sync"
)

// MemoryStore is an in-memory storage.Storage with failure injection for tests
type MemoryStore struct {
	mu      sync.Mutex
	buckets []storage.Bucket
	objects map[string]map[string]storage.Object

	// Failure injection. Keys: "bucket" for bucket operations, "bucket/path" for listings
	// ("bucket/" for the bucket root) and "bucket/key" for object operations
	FailListBuckets error
	FailList        map[string]error
	FailDownload    map[string]error
	FailUpload      map[string]error
	FailCreate      map[string]error

	// Call counters
	ListCalls     map[string]int
	CreateCalls   map[string]int
	UploadCalls   map[string]int
	DownloadCalls map[string]int
	Closed        bool
}

var _ storage.Storage = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:       make(map[string]map[string]storage.Object),
		FailList:      make(map[string]error),
		FailDownload:  make(map[string]error),
		FailUpload:    make(map[string]error),
		FailCreate:    make(map[string]error),
		ListCalls:     make(map[string]int),
		CreateCalls:   make(map[string]int),
		UploadCalls:   make(map[string]int),
		DownloadCalls: make(map[string]int),
	}
}

// Seeds a bucket without going through CreateBucket
func (m *MemoryStore) AddBucket(name string, public bool) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addBucketLocked(name, public)
	return m
}

// Seeds an object, creating its bucket when missing
func (m *MemoryStore) Put(bucket, key string, data []byte, contentType string) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[bucket]; !ok {
		m.addBucketLocked(bucket, false)
	}
	m.objects[bucket][storage.JoinKey(key)] = storage.Object{Data: data, ContentType: contentType}
	return m
}

func (m *MemoryStore) addBucketLocked(name string, public bool) {
	m.buckets = append(m.buckets, storage.Bucket{Name: name, Public: public, Provider: m.ProviderName(), UsageBytes: -1})
	m.objects[name] = make(map[string]storage.Object)
}

// Returns a stored object and whether it exists
func (m *MemoryStore) Get(bucket, key string) (storage.Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket][key]
	return obj, ok
}

func (m *MemoryStore) BucketNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.buckets))
	for _, b := range m.buckets {
		names = append(names, b.Name)
	}
	return names
}

func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects[bucket]))
	for k := range m.objects[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) ProviderName() common.Provider {
	return common.Provider("memory")
}

func (m *MemoryStore) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailListBuckets != nil {
		return nil, m.FailListBuckets
	}
	out := make([]storage.Bucket, len(m.buckets))
	copy(out, m.buckets)
	return out, nil
}

// Lists the immediate children of path sorted by name, directories synthesized from key prefixes
func (m *MemoryStore) ListObjects(ctx context.Context, bucket, path string, page storage.Page) ([]storage.ListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listKey := bucket + "/" + path
	m.ListCalls[listKey]++
	if err := m.FailList[listKey]; err != nil {
		return nil, err
	}

	objects, ok := m.objects[bucket]
	if !ok {
		return nil, storage.NewStoreError("list objects", bucket, path, storage.ErrNotFound)
	}

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	dirs := make(map[string]bool)
	var items []storage.ListItem
	for key, obj := range objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dirs[rest[:i]] = true
			continue
		}
		items = append(items, storage.ListItem{Name: rest, ContentType: obj.ContentType, Size: int64(len(obj.Data))})
	}
	for dir := range dirs {
		items = append(items, storage.ListItem{Name: dir, IsDir: true})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	if page.Offset >= len(items) {
		return []storage.ListItem{}, nil
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return items[page.Offset:end], nil
}

func (m *MemoryStore) DownloadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objectKey := bucket + "/" + key
	m.DownloadCalls[objectKey]++
	if err := m.FailDownload[objectKey]; err != nil {
		return storage.Object{}, err
	}
	obj, ok := m.objects[bucket][key]
	if !ok {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, storage.ErrNotFound)
	}
	return obj, nil
}

func (m *MemoryStore) CreateBucket(ctx context.Context, name string, public bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls[name]++
	if err := m.FailCreate[name]; err != nil {
		return err
	}
	if _, ok := m.objects[name]; ok {
		return storage.NewStoreError("create bucket", name, "", storage.ErrBucketExists)
	}
	m.addBucketLocked(name, public)
	return nil
}

func (m *MemoryStore) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	objectKey := bucket + "/" + key
	m.UploadCalls[objectKey]++
	if err := m.FailUpload[objectKey]; err != nil {
		return err
	}
	objects, ok := m.objects[bucket]
	if !ok {
		return storage.NewStoreError("upload", bucket, key, fmt.Errorf("bucket %w", storage.ErrNotFound))
	}
	if _, exists := objects[key]; exists && !overwrite {
		return storage.NewStoreError("upload", bucket, key, storage.ErrObjectExists)
	}
	objects[key] = storage.Object{Data: data, ContentType: contentType}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
