package substack

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Image references a cover image: either an already-hosted URL or inline
// bytes that need uploading. The zero value means no image.
type Image struct {
	url  string
	mime string
	data []byte
}

// ImageURL references an image that is already hosted somewhere.
func ImageURL(url string) Image {
	return Image{url: url}
}

// ImageBytes references inline image data to be uploaded. mime must be an
// image/* type, for example "image/png".
func ImageBytes(mime string, data []byte) Image {
	return Image{mime: mime, data: data}
}

func (im Image) isZero() bool {
	return im.url == "" && len(im.data) == 0
}

type imageUploadBody struct {
	Image  string  `json:"image"`
	PostID DraftID `json:"postId"`
}

type imageUploadResponse struct {
	URL string `json:"url"`
}

// UploadImage resolves an image reference to a hosted URL. Remote references
// pass through untouched with no network call. Inline data is uploaded as a
// base64 data URI to the global host, attached to the owning draft so the
// platform can associate the binary before the draft is published.
func (c *Client) UploadImage(ctx context.Context, im Image, draftID DraftID) (string, error) {
	if im.url != "" {
		return im.url, nil
	}
	if !strings.HasPrefix(im.mime, "image/") {
		return "", fmt.Errorf("%w: mime type %q", ErrNotAnImage, im.mime)
	}

	body := imageUploadBody{
		Image:  "data:" + im.mime + ";base64," + base64.StdEncoding.EncodeToString(im.data),
		PostID: draftID,
	}
	var resp imageUploadResponse
	if err := c.tr.Post(ctx, c.globalAPI("/image"), body, &resp); err != nil {
		return "", stageErr(StageUploadImage, err)
	}
	return resp.URL, nil
}
