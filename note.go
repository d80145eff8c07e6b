package substack

import (
	"context"

	"github.com/b992/substack-go/pkg/document"
)

// shareTrackingParam marks a post URL as shared through the share flow. The
// platform's onboarding logic keys off it; it is appended verbatim.
const shareTrackingParam = "showWelcomeOnShare=true"

// Note is a short post on the feed, optionally carrying link attachments.
type Note struct {
	ID   int64
	Body string
	// AttachedURL is the link the note references, empty for plain notes.
	AttachedURL string
}

type attachmentBody struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type attachmentResponse struct {
	ID string `json:"id"`
}

type noteBody struct {
	BodyJSON      document.Document `json:"bodyJson"`
	TabID         string            `json:"tabId"`
	SurfaceID     string            `json:"surface"`
	ReplyMinimum  string            `json:"replyMinimumRole"`
	AttachmentIDs []string          `json:"attachmentIds,omitempty"`
}

type noteResponse struct {
	ID int64 `json:"id"`
}

// attachLink creates a link attachment on the global host and returns its id.
func (c *Client) attachLink(ctx context.Context, url string) (string, error) {
	var resp attachmentResponse
	err := c.tr.Post(ctx, c.globalAPI("/comment/attachment"), attachmentBody{Type: "link", URL: url}, &resp)
	if err != nil {
		return "", stageErr(StageShareAsNote, err)
	}
	return resp.ID, nil
}

func (c *Client) postNote(ctx context.Context, text string, attachmentIDs []string) (*Note, error) {
	body := noteBody{
		BodyJSON:      document.New(document.Paragraph(document.Text(text))),
		TabID:         "for_you",
		SurfaceID:     "feed",
		ReplyMinimum:  "everyone",
		AttachmentIDs: attachmentIDs,
	}
	var resp noteResponse
	if err := c.tr.Post(ctx, c.globalAPI("/comment/feed"), body, &resp); err != nil {
		return nil, stageErr(StageShareAsNote, err)
	}
	return &Note{ID: resp.ID, Body: text}, nil
}

// PublishNote posts a standalone plain-text note to the feed.
func (c *Client) PublishNote(ctx context.Context, text string) (*Note, error) {
	return c.postNote(ctx, text, nil)
}

// shareAsNote posts a note referencing a just-published draft. The post URL
// carries the share-flow tracking parameter. Runs only after a successful
// publish; failures never unwind the published draft.
func (c *Client) shareAsNote(ctx context.Context, draft *Draft, text string) (*Note, error) {
	url := draft.PublicURL(c.pub) + "?" + shareTrackingParam
	attachmentID, err := c.attachLink(ctx, url)
	if err != nil {
		return nil, err
	}
	note, err := c.postNote(ctx, text, []string{attachmentID})
	if err != nil {
		return nil, err
	}
	note.AttachedURL = url
	return note, nil
}
