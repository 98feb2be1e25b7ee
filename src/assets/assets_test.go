package assets

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cool_filename.txt.wow", SanitizeFilename("cool filename.txt.wow"))
	assert.Equal(t, "newlines_aretotallylegal", SanitizeFilename("newlines\naretotallylegal"))
	assert.Equal(t, "unnamed", SanitizeFilename(""))
	assert.Equal(t, "unnamed", SanitizeFilename("🐶"))
}

func TestDetectImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	info, err := DetectImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 30, info.Height)

	var invalid *InvalidAssetError
	_, err = DetectImage(nil)
	assert.ErrorAs(t, err, &invalid)
	_, err = DetectImage([]byte("<html><script>alert(1)</script></html>"))
	assert.ErrorAs(t, err, &invalid)
	_, err = DetectImage(buf.Bytes()[:20])
	assert.ErrorAs(t, err, &invalid)
}

func TestURL(t *testing.T) {
	s := &Store{publicUrl: "https://cdn.example.com/wiki"}
	id := uuid.New()
	a := &models.Asset{ID: id, S3Key: AssetKey(id.String(), "logo.png")}
	assert.Equal(t, "https://cdn.example.com/wiki/"+id.String()+"/logo.png", s.URL(a))
}
