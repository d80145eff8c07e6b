package substack_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	substack "github.com/b992/substack-go"
	"github.com/b992/substack-go/internal/mock"
)

func TestUploadImageRemotePassthrough(t *testing.T) {
	tr := mock.NewTransport()
	c := newTestClient(t, tr)

	url, err := c.UploadImage(context.Background(), substack.ImageURL("https://img.test/x.png"), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/x.png", url)
	assert.Empty(t, tr.Calls())
}

func TestUploadImageRejectsNonImageMime(t *testing.T) {
	tr := mock.NewTransport()
	c := newTestClient(t, tr)

	_, err := c.UploadImage(context.Background(), substack.ImageBytes("text/plain", []byte("nope")), 1)
	assert.ErrorIs(t, err, substack.ErrNotAnImage)
	assert.Empty(t, tr.Calls())
}

func TestUploadImageDataURI(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("POST", "/image", map[string]string{"url": "https://cdn.test/up.png"})
	c := newTestClient(t, tr)

	url, err := c.UploadImage(context.Background(), substack.ImageBytes("image/png", []byte{0x89, 0x50}), 77)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/up.png", url)

	call := findCall(t, tr, "POST", "/image")
	assert.True(t, strings.HasPrefix(call.URL, "https://global.test/"), "upload must hit the global host, got %s", call.URL)

	body := callBody(t, call)
	img, ok := body["image"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(img, "data:image/png;base64,"))
	assert.Equal(t, float64(77), body["postId"])
}
