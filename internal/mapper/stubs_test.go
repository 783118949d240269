package mapper

import (
	"io"
	"strings"
)

type stubPreviews struct{}

func (stubPreviews) Create(data []byte, mediaType string) string { return "p-1" }
func (stubPreviews) Release(id string)                           {}

type stubFile struct{}

func (stubFile) Name() string      { return "cat.png" }
func (stubFile) MediaType() string { return "image/png" }
func (stubFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("meow")), nil
}
