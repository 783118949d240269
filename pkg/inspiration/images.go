package inspiration

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	MinImages     = 1
	MaxImages     = 2
	MaxImageBytes = 8 * 1024 * 1024
)

// Image is one uploaded inspiration image.
type Image struct {
	Data      []byte
	MediaType string
	PreviewID string
}

// ImageFile is an incoming upload. Reading is delegated to the caller's
// transport (multipart form, disk, test fixture).
type ImageFile interface {
	Name() string
	MediaType() string
	Open() (io.ReadCloser, error)
}

// PreviewStore holds the transient preview handle backing each image.
type PreviewStore interface {
	Create(data []byte, mediaType string) string
	Release(id string)
}

// ImageSelection is the image modality state.
type ImageSelection struct {
	images   []Image
	previews PreviewStore
}

// NewImageSelection creates an empty selection. previews may be nil, in which
// case images carry no preview handle.
func NewImageSelection(previews PreviewStore) *ImageSelection {
	return &ImageSelection{previews: previews}
}

func (s *ImageSelection) Images() []Image { return slices.Clone(s.images) }

func (s *ImageSelection) Count() int { return len(s.images) }

func (s *ImageSelection) Full() bool { return len(s.images) >= MaxImages }

func (s *ImageSelection) Valid() bool {
	return len(s.images) >= MinImages && len(s.images) <= MaxImages
}

// AddImages ingests a batch all-or-nothing: a batch larger than the remaining
// capacity, a non-image file or an unreadable file leaves the selection
// untouched.
func (s *ImageSelection) AddImages(files []ImageFile) error {
	if len(files) == 0 {
		return nil
	}

	available := MaxImages - len(s.images)
	if len(files) > available {
		return &ValidationError{
			Field:   "images",
			Message: fmt.Sprintf("You can only add %d more image(s). Please select fewer files.", available),
		}
	}

	converted := make([]Image, 0, len(files))
	for _, file := range files {
		img, err := readImage(file)
		if err != nil {
			return err
		}
		converted = append(converted, img)
	}

	if s.previews != nil {
		for i := range converted {
			converted[i].PreviewID = s.previews.Create(converted[i].Data, converted[i].MediaType)
		}
	}
	s.images = append(s.images, converted...)
	return nil
}

func readImage(file ImageFile) (Image, error) {
	mediaType := file.MediaType()
	if !strings.HasPrefix(mediaType, "image/") {
		return Image{}, &AssetReadError{
			Name:    file.Name(),
			Message: "Please upload only image files.",
			Err:     ErrNotAnImage,
		}
	}

	rc, err := file.Open()
	if err != nil {
		return Image{}, &AssetReadError{Name: file.Name(), Message: "Could not read file.", Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return Image{}, &AssetReadError{Name: file.Name(), Message: "Could not read file.", Err: err}
	}
	if len(data) == 0 {
		return Image{}, &AssetReadError{Name: file.Name(), Message: "Could not read file.", Err: ErrEmptyFile}
	}
	if len(data) > MaxImageBytes {
		return Image{}, &AssetReadError{
			Name:    file.Name(),
			Message: fmt.Sprintf("%s is too large (max %d MB).", file.Name(), MaxImageBytes/(1024*1024)),
			Err:     ErrTooLarge,
		}
	}
	return Image{Data: data, MediaType: mediaType}, nil
}

// RemoveImage deletes the image at index and releases its preview.
func (s *ImageSelection) RemoveImage(index int) error {
	if index < 0 || index >= len(s.images) {
		return &ValidationError{Field: "index", Message: fmt.Sprintf("no image at position %d", index)}
	}
	s.release(s.images[index])
	s.images = slices.Delete(s.images, index, index+1)
	return nil
}

// ReleaseAll drops every image and its preview. Used when the session ends.
func (s *ImageSelection) ReleaseAll() {
	for _, img := range s.images {
		s.release(img)
	}
	s.images = nil
}

func (s *ImageSelection) release(img Image) {
	if s.previews != nil && img.PreviewID != "" {
		s.previews.Release(img.PreviewID)
	}
}
