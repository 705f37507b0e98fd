package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/storage"
)

type photoSpec struct {
	name        string
	contentType string
	content     []byte
}

// makePhotoBatch builds real multipart file headers the way gin would hand
// them to a handler.
func makePhotoBatch(t *testing.T, specs []photoSpec) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, spec := range specs {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename=%q`, spec.name))
		header.Set("Content-Type", spec.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(spec.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["photos"]
}

func newTestBuilder(t *testing.T) (*ImageSetBuilder, string) {
	root := t.TempDir()
	store := storage.NewLocalFileStore(root)
	builder := NewImageSetBuilder(store, "img", ImageConstraints{
		AllowedTypePrefix: "image/",
		MaxSizeKB:         200,
	})
	return builder, root
}

func storedFileCount(t *testing.T, root string) int {
	t.Helper()
	entries, err := os.ReadDir(root + "/img")
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestBuildMarksFirstImageMain(t *testing.T) {
	builder, root := newTestBuilder(t)

	images, err := builder.Build(makePhotoBatch(t, []photoSpec{
		{name: "front.png", contentType: "image/png", content: []byte("a")},
		{name: "back.jpg", contentType: "image/jpeg", content: []byte("b")},
		{name: "side.gif", contentType: "image/gif", content: []byte("c")},
	}))
	require.NoError(t, err)
	require.Len(t, images, 3)

	mainCount := 0
	for _, img := range images {
		if img.IsMain {
			mainCount++
		}
	}
	assert.Equal(t, 1, mainCount)
	assert.True(t, images[0].IsMain)
	assert.Contains(t, images[0].FileName, "front.png")
	assert.Equal(t, 3, storedFileCount(t, root))
}

func TestBuildRejectsNonImagePayload(t *testing.T) {
	builder, root := newTestBuilder(t)

	_, err := builder.Build(makePhotoBatch(t, []photoSpec{
		{name: "front.png", contentType: "image/png", content: []byte("a")},
		{name: "notes.txt", contentType: "text/plain", content: []byte("b")},
	}))

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeInvalidType, domainErr.Code)
	// The whole batch is rejected before any file-store write.
	assert.Equal(t, 0, storedFileCount(t, root))
}

func TestBuildRejectsOversizedPayload(t *testing.T) {
	builder, root := newTestBuilder(t)

	_, err := builder.Build(makePhotoBatch(t, []photoSpec{
		{name: "small.png", contentType: "image/png", content: []byte("a")},
		{name: "huge.png", contentType: "image/png", content: bytes.Repeat([]byte("x"), 201*1024)},
	}))

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeFileTooLarge, domainErr.Code)
	assert.Equal(t, 0, storedFileCount(t, root))
}

func TestBuildRejectsEmptyBatch(t *testing.T) {
	builder, _ := newTestBuilder(t)

	_, err := builder.Build(nil)

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeNoImages, domainErr.Code)
}
