package substack

import (
	"context"

	"github.com/b992/substack-go/pkg/document"
	"github.com/b992/substack-go/pkg/markup"
)

// PublishRequest accumulates everything one publish needs. Build it with
// NewPost and the chained setters; validation happens when the request is
// handed to Publish, not per setter.
type PublishRequest struct {
	title     string
	subtitle  string
	body      string
	markdown  bool
	doc       *document.Document
	cover     Image
	sectionID SectionID
	audience  string
	tags      []string
	seo       SEO
	shareText string
	silent    bool
}

// NewPost starts a publish request for a post with the given title.
func NewPost(title string) *PublishRequest {
	return &PublishRequest{title: title}
}

// Subtitle sets the post subtitle.
func (r *PublishRequest) Subtitle(s string) *PublishRequest {
	r.subtitle = s
	return r
}

// BodyMarkup sets the post body as tag markup (h2-h4, p, ul/ol/li, strong,
// em, s, code, a).
func (r *PublishRequest) BodyMarkup(markup string) *PublishRequest {
	r.body = markup
	r.markdown = false
	return r
}

// BodyMarkdown sets the post body as Markdown.
func (r *PublishRequest) BodyMarkdown(src string) *PublishRequest {
	r.body = src
	r.markdown = true
	return r
}

// Document sets a prebuilt post body, bypassing conversion.
func (r *PublishRequest) Document(d document.Document) *PublishRequest {
	r.doc = &d
	return r
}

// CoverImage sets the cover image reference.
func (r *PublishRequest) CoverImage(im Image) *PublishRequest {
	r.cover = im
	return r
}

// Section assigns the post to a section, overriding the client default.
func (r *PublishRequest) Section(id SectionID) *PublishRequest {
	r.sectionID = id
	return r
}

// Audience controls who can read the post, AudienceEveryone or
// AudiencePaidOnly. Defaults to everyone.
func (r *PublishRequest) Audience(audience string) *PublishRequest {
	r.audience = audience
	return r
}

// Tags sets the post tags.
func (r *PublishRequest) Tags(tags ...string) *PublishRequest {
	r.tags = tags
	return r
}

// SEO sets the search and social metadata.
func (r *PublishRequest) SEO(seo SEO) *PublishRequest {
	r.seo = seo
	return r
}

// ShareText requests a share note with the given text after publishing.
func (r *PublishRequest) ShareText(text string) *PublishRequest {
	r.shareText = text
	return r
}

// Silent suppresses the subscriber email notification.
func (r *PublishRequest) Silent() *PublishRequest {
	r.silent = true
	return r
}

// document resolves the request body to a document tree.
func (r *PublishRequest) document(conv markup.Converter) document.Document {
	if r.doc != nil {
		return *r.doc
	}
	if r.markdown {
		return conv.ConvertMarkdown(r.body)
	}
	return conv.Convert(r.body)
}

// Publish runs the full pipeline: create a draft, resolve the cover image,
// convert the body, merge content, publish, and optionally share as a note.
//
// The section precondition is checked before the content merge: the platform
// only rejects sectionless drafts at publish time, after content has been
// persisted, so failing early spares a wasted round trip and an orphaned
// populated draft.
//
// A cover image upload failure degrades to publishing without a cover; a
// share failure leaves the published draft intact and returns a nil note.
// Both degradations are logged at Warn. Fatal errors return the
// partially-built draft alongside the error so the caller can clean up with
// DeleteDraft or retry against the same id.
func (c *Client) Publish(ctx context.Context, req *PublishRequest) (*Draft, *Note, error) {
	if req == nil || req.title == "" {
		return nil, nil, ErrNoTitle
	}

	draft, err := c.CreateDraft(ctx)
	if err != nil {
		return nil, nil, err
	}

	coverURL := ""
	if !req.cover.isZero() {
		coverURL, err = c.UploadImage(ctx, req.cover, draft.ID)
		if err != nil {
			c.log.Warn("cover image upload failed, publishing without cover",
				"draft_id", draft.ID, "error", err.Error())
			coverURL = ""
		}
	}

	doc := req.document(markup.Converter{Logger: c.log})

	section := req.sectionID
	if section == 0 {
		section = c.defaults.DefaultSectionID
	}
	if section == 0 {
		return draft, nil, ErrNoSection
	}

	merged, err := c.UpdateDraft(ctx, draft.ID, DraftContent{
		Title:         req.title,
		Subtitle:      req.subtitle,
		Document:      doc,
		CoverImageURL: coverURL,
		SectionID:     section,
		Audience:      req.audience,
		Tags:          req.tags,
		SEO:           req.seo,
	})
	if err != nil {
		return draft, nil, err
	}
	if merged.Published {
		return merged, nil, ErrAlreadyPublished
	}

	draft, err = c.PublishDraft(ctx, merged.ID, !req.silent)
	if err != nil {
		return merged, nil, err
	}

	if req.shareText == "" {
		return draft, nil, nil
	}
	note, err := c.shareAsNote(ctx, draft, req.shareText)
	if err != nil {
		c.log.Warn("share note failed, post is published",
			"draft_id", draft.ID, "error", err.Error())
		return draft, nil, nil
	}
	return draft, note, nil
}
