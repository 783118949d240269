package memory

import (
	"errors"

	"storyspark-be/pkg/inspiration"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Preview is the servable copy of an uploaded image.
type Preview struct {
	Data      []byte
	MediaType string
}

var ErrPreviewNotFound = errors.New("preview not found")

// PreviewRepository hands out preview handles for uploaded images. Handles
// never expire on their own; the owning image selection releases them.
type PreviewRepository struct {
	cache *cache.Cache
}

var _ inspiration.PreviewStore = (*PreviewRepository)(nil)

func NewPreviewRepository() *PreviewRepository {
	return &PreviewRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *PreviewRepository) Create(data []byte, mediaType string) string {
	id := uuid.NewString()
	r.cache.Set(id, Preview{Data: data, MediaType: mediaType}, cache.NoExpiration)
	return id
}

func (r *PreviewRepository) Get(id string) (Preview, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return Preview{}, false
	}
	return x.(Preview), true
}

func (r *PreviewRepository) Release(id string) {
	r.cache.Delete(id)
}

func (r *PreviewRepository) Count() int {
	return r.cache.ItemCount()
}
