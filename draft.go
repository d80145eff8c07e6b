package substack

import (
	"context"
	"fmt"

	"github.com/b992/substack-go/pkg/document"
)

// Draft is a remote content record. ID is assigned by the platform on
// creation; Published transitions false to true exactly once and never
// reverts.
type Draft struct {
	ID            DraftID
	Title         string
	Subtitle      string
	Slug          string
	SectionID     SectionID
	CoverImageURL string
	Published     bool
	PostDate      string
}

// PublicURL returns the post's public address under the given publication
// base URL. Meaningful once the draft has a slug.
func (d *Draft) PublicURL(publicationURL string) string {
	return fmt.Sprintf("%s/p/%s", publicationURL, d.Slug)
}

// Byline attributes a draft to an author.
type Byline struct {
	ID      UserID `json:"id"`
	UserID  UserID `json:"user_id"`
	IsDraft bool   `json:"is_draft"`
	IsGuest bool   `json:"is_guest"`
}

// Audience values for DraftContent and PublishRequest.
const (
	// AudienceEveryone makes a post readable by everyone.
	AudienceEveryone = "everyone"
	// AudiencePaidOnly restricts a post to paid subscribers.
	AudiencePaidOnly = "paid"
)

// SEO carries the search and social metadata merged into a draft.
type SEO struct {
	Description             string
	SearchEngineTitle       string
	SearchEngineDescription string
	SocialTitle             string
}

// DraftContent is everything UpdateDraft persists. Updates are full-replace:
// the platform does not merge partial content updates, so every field must
// be resupplied on every call, and an empty field clears the stored value.
type DraftContent struct {
	Title         string
	Subtitle      string
	Document      document.Document
	CoverImageURL string
	SectionID     SectionID
	// Audience defaults to AudienceEveryone when empty.
	Audience string
	Tags     []string
	SEO      SEO
}

// draftPayload is the wire shape of a draft. The platform populates either
// the draft_* or the published-name variant of a field depending on state;
// decode() folds those fallbacks into one place.
type draftPayload struct {
	ID            int64  `json:"id"`
	DraftTitle    string `json:"draft_title"`
	Title         string `json:"title"`
	DraftSubtitle string `json:"draft_subtitle"`
	Subtitle      string `json:"subtitle"`
	Slug          string `json:"slug"`
	SectionID     *int64 `json:"section_id"`
	DraftSection  *int64 `json:"draft_section_id"`
	CoverImage    string `json:"cover_image"`
	IsPublished   bool   `json:"is_published"`
	PostDate      string `json:"post_date"`
}

func (p draftPayload) decode() *Draft {
	d := &Draft{
		ID:            DraftID(p.ID),
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Slug:          p.Slug,
		CoverImageURL: p.CoverImage,
		Published:     p.IsPublished,
		PostDate:      p.PostDate,
	}
	if d.Title == "" {
		d.Title = p.DraftTitle
	}
	if d.Subtitle == "" {
		d.Subtitle = p.DraftSubtitle
	}
	switch {
	case p.SectionID != nil:
		d.SectionID = SectionID(*p.SectionID)
	case p.DraftSection != nil:
		d.SectionID = SectionID(*p.DraftSection)
	}
	return d
}

type draftCreateBody struct {
	DraftTitle    string   `json:"draft_title"`
	DraftSubtitle string   `json:"draft_subtitle"`
	DraftBody     string   `json:"draft_body"`
	DraftBylines  []Byline `json:"draft_bylines"`
	Audience      string   `json:"audience"`
	Type          string   `json:"type"`
	EditorV2      bool     `json:"editor_v2"`
}

// Full-replace wire shape: no omitempty on content fields, so an empty
// value clears what a previous merge stored. The section id is a pointer
// because clearing a section means null, not zero.
type draftUpdateBody struct {
	DraftTitle              string     `json:"draft_title"`
	DraftSubtitle           string     `json:"draft_subtitle"`
	DraftBody               string     `json:"draft_body"`
	CoverImage              string     `json:"cover_image"`
	SectionID               *SectionID `json:"draft_section_id"`
	SectionChosen           bool       `json:"section_chosen"`
	Audience                string     `json:"audience"`
	Tags                    []string   `json:"post_tags"`
	Description             string     `json:"description,omitempty"`
	SearchEngineTitle       string     `json:"search_engine_title,omitempty"`
	SearchEngineDescription string     `json:"search_engine_description,omitempty"`
	SocialTitle             string     `json:"social_title,omitempty"`
}

// CreateDraft creates an empty draft attributed to the configured author and
// returns it with its server-assigned id.
func (c *Client) CreateDraft(ctx context.Context) (*Draft, error) {
	author, err := c.resolveAuthor(ctx)
	if err != nil {
		return nil, err
	}

	emptyBody, err := document.Document{}.BodyJSON()
	if err != nil {
		return nil, stageErr(StageCreateDraft, err)
	}
	body := draftCreateBody{
		DraftBody: emptyBody,
		DraftBylines: []Byline{{
			ID:      author,
			UserID:  author,
			IsDraft: true,
		}},
		Audience: "everyone",
		Type:     "newsletter",
		EditorV2: true,
	}

	var payload draftPayload
	if err := c.tr.Post(ctx, c.pubAPI("/drafts"), body, &payload); err != nil {
		return nil, stageErr(StageCreateDraft, err)
	}
	return payload.decode(), nil
}

// UpdateDraft replaces the draft's content and metadata wholesale. The
// section-chosen flag accompanies any section id; the platform ignores a
// bare section id without it.
func (c *Client) UpdateDraft(ctx context.Context, id DraftID, content DraftContent) (*Draft, error) {
	bodyJSON, err := content.Document.BodyJSON()
	if err != nil {
		return nil, stageErr(StageMergeContent, err)
	}
	var section *SectionID
	if content.SectionID != 0 {
		section = &content.SectionID
	}
	audience := content.Audience
	if audience == "" {
		audience = AudienceEveryone
	}
	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}
	body := draftUpdateBody{
		DraftTitle:              content.Title,
		DraftSubtitle:           content.Subtitle,
		DraftBody:               bodyJSON,
		CoverImage:              content.CoverImageURL,
		SectionID:               section,
		SectionChosen:           content.SectionID != 0,
		Audience:                audience,
		Tags:                    tags,
		Description:             content.SEO.Description,
		SearchEngineTitle:       content.SEO.SearchEngineTitle,
		SearchEngineDescription: content.SEO.SearchEngineDescription,
		SocialTitle:             content.SEO.SocialTitle,
	}

	var payload draftPayload
	if err := c.tr.Put(ctx, c.pubAPI("/drafts/"+id.String()), body, &payload); err != nil {
		return nil, stageErr(StageMergeContent, err)
	}
	return payload.decode(), nil
}

// PublishDraft transitions the draft to published. send controls whether
// subscribers are notified by email. The draft must already carry a section.
func (c *Client) PublishDraft(ctx context.Context, id DraftID, send bool) (*Draft, error) {
	body := map[string]bool{"send": send}

	var payload draftPayload
	if err := c.tr.Post(ctx, c.pubAPI("/drafts/"+id.String()+"/publish"), body, &payload); err != nil {
		return nil, stageErr(StagePublish, err)
	}
	d := payload.decode()
	d.Published = true
	return d, nil
}

// DeleteDraft removes an unpublished draft.
func (c *Client) DeleteDraft(ctx context.Context, id DraftID) error {
	if err := c.tr.Delete(ctx, c.pubAPI("/drafts/"+id.String())); err != nil {
		return stageErr(StageDeleteDraft, err)
	}
	return nil
}

// GetDraft fetches one draft by id.
func (c *Client) GetDraft(ctx context.Context, id DraftID) (*Draft, error) {
	var payload draftPayload
	if err := c.tr.Get(ctx, c.pubAPI("/drafts/"+id.String()), &payload); err != nil {
		return nil, stageErr(StageListDrafts, err)
	}
	return payload.decode(), nil
}

// DraftListOptions controls ListDrafts paging.
type DraftListOptions struct {
	Offset int
	Limit  int // default 25
}

// ListDrafts returns one page of the publication's drafts, most recently
// updated first.
func (c *Client) ListDrafts(ctx context.Context, opts DraftListOptions) ([]*Draft, error) {
	if opts.Limit <= 0 {
		opts.Limit = 25
	}
	url := fmt.Sprintf("%s?offset=%d&limit=%d", c.pubAPI("/drafts"), opts.Offset, opts.Limit)

	var payloads []draftPayload
	if err := c.tr.Get(ctx, url, &payloads); err != nil {
		return nil, stageErr(StageListDrafts, err)
	}
	drafts := make([]*Draft, 0, len(payloads))
	for _, p := range payloads {
		drafts = append(drafts, p.decode())
	}
	return drafts, nil
}

// DraftPager iterates the publication's drafts page by page.
type DraftPager struct {
	client *Client
	opts   DraftListOptions
	done   bool
}

// Drafts returns a pager starting at opts.Offset.
func (c *Client) Drafts(opts DraftListOptions) *DraftPager {
	if opts.Limit <= 0 {
		opts.Limit = 25
	}
	return &DraftPager{client: c, opts: opts}
}

// Next fetches the next page. It returns nil once all pages are consumed.
func (p *DraftPager) Next(ctx context.Context) ([]*Draft, error) {
	if p.done {
		return nil, nil
	}
	page, err := p.client.ListDrafts(ctx, p.opts)
	if err != nil {
		return nil, err
	}
	if len(page) < p.opts.Limit {
		p.done = true
	}
	p.opts.Offset += len(page)
	return page, nil
}
