package memory

import (
	"context"
	"sync"

	"github.com/w-h-a/redflag/imagestore"
)

type Object struct {
	ContentType string
	Data        []byte
}

// ImageStore keeps objects in process and exposes them for inspection.
type ImageStore interface {
	imagestore.ImageStore
	Object(key string) (Object, bool)
	Len() int
}

type memoryImageStore struct {
	options imagestore.Options
	mtx     sync.RWMutex
	objects map[string]Object
}

func (s *memoryImageStore) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.objects[key] = Object{
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
	}

	return s.url(key), nil
}

func (s *memoryImageStore) Delete(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.objects[key]; !ok {
		return imagestore.ErrNotFound
	}

	delete(s.objects, key)

	return nil
}

func (s *memoryImageStore) Object(key string) (Object, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	obj, ok := s.objects[key]
	return obj, ok
}

func (s *memoryImageStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.objects)
}

func (s *memoryImageStore) url(key string) string {
	if len(s.options.PublicBaseURL) > 0 {
		return s.options.PublicBaseURL + "/" + key
	}
	return "memory://" + key
}

func NewImageStore(opts ...imagestore.Option) ImageStore {
	options := imagestore.NewOptions(opts...)

	return &memoryImageStore{
		options: options,
		objects: map[string]Object{},
	}
}
