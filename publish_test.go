package substack_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	substack "github.com/b992/substack-go"
	"github.com/b992/substack-go/internal/mock"
	"github.com/b992/substack-go/pkg/document"
)

func documentWith(text string) document.Document {
	return document.New(document.Paragraph(document.Text(text)))
}

func newTestClient(t *testing.T, tr substack.Transport, opts ...func(*substack.Config)) *substack.Client {
	t.Helper()
	cfg := substack.Config{
		PublicationURL: "https://pub.test",
		GlobalHostURL:  "https://global.test",
		Transport:      tr,
		AuthorID:       42,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := substack.New(cfg)
	require.NoError(t, err)
	return c
}

func stubDraftLifecycle(tr *mock.Transport, id int64, slug string) {
	tr.Respond("POST", "/publish", map[string]any{
		"id": id, "slug": slug, "is_published": true,
	})
	tr.Respond("POST", "/drafts", map[string]any{"id": id})
	tr.Respond("PUT", "/drafts", map[string]any{"id": id, "slug": slug})
}

func findCall(t *testing.T, tr *mock.Transport, method, substr string) mock.Call {
	t.Helper()
	for _, c := range tr.Calls() {
		if c.Method == method && strings.Contains(c.URL, substr) {
			return c
		}
	}
	t.Fatalf("no %s call matching %q recorded", method, substr)
	return mock.Call{}
}

func callBody(t *testing.T, c mock.Call) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(c.Body, &body))
	return body
}

func TestPublishRequiresTitle(t *testing.T) {
	tr := mock.NewTransport()
	c := newTestClient(t, tr)

	_, _, err := c.Publish(context.Background(), substack.NewPost(""))
	assert.ErrorIs(t, err, substack.ErrNoTitle)
	assert.Empty(t, tr.Calls())
}

func TestPublishFailsFastWithoutSection(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 101, "no-section")
	c := newTestClient(t, tr)

	draft, note, err := c.Publish(context.Background(),
		substack.NewPost("No section").BodyMarkup("<p>body</p>"))

	assert.ErrorIs(t, err, substack.ErrNoSection)
	assert.Nil(t, note)
	require.NotNil(t, draft)
	assert.Equal(t, substack.DraftID(101), draft.ID)

	// the draft was created but nothing was merged or published
	assert.Equal(t, 1, tr.CallCount("POST", "/drafts"))
	assert.Equal(t, 0, tr.CallCount("PUT", "/drafts"))
	assert.Equal(t, 0, tr.CallCount("POST", "/publish"))
}

func TestPublishCoverUploadFailureDegrades(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 102, "no-cover")
	tr.Fail("POST", "/image", &substack.RemoteError{StatusCode: 500, Body: "upload broke"})
	c := newTestClient(t, tr)

	draft, _, err := c.Publish(context.Background(),
		substack.NewPost("No cover").
			BodyMarkup("<p>body</p>").
			Section(7).
			CoverImage(substack.ImageBytes("image/png", []byte{1, 2, 3})))

	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.True(t, draft.Published)

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Equal(t, "", merge["cover_image"])
}

func TestPublishRemoteCoverSkipsUpload(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 103, "remote-cover")
	c := newTestClient(t, tr)

	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Remote cover").
			BodyMarkup("<p>body</p>").
			Section(7).
			CoverImage(substack.ImageURL("https://img.test/cover.png")))

	require.NoError(t, err)
	assert.Equal(t, 0, tr.CallCount("POST", "/image"))

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Equal(t, "https://img.test/cover.png", merge["cover_image"])
}

func TestPublishMergePayload(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 104, "payload")
	c := newTestClient(t, tr)

	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Title here").
			Subtitle("Sub here").
			BodyMarkup("<h2>Hi</h2><p>there</p>").
			Section(7).
			Tags("go", "testing").
			SEO(substack.SEO{Description: "desc", SocialTitle: "social"}))
	require.NoError(t, err)

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Equal(t, "Title here", merge["draft_title"])
	assert.Equal(t, "Sub here", merge["draft_subtitle"])
	assert.Equal(t, float64(7), merge["draft_section_id"])
	assert.Equal(t, true, merge["section_chosen"])
	assert.Equal(t, "everyone", merge["audience"])
	assert.Equal(t, []any{"go", "testing"}, merge["post_tags"])
	assert.Equal(t, "desc", merge["description"])
	assert.Equal(t, "social", merge["social_title"])

	body, ok := merge["draft_body"].(string)
	require.True(t, ok, "draft_body must be a string-encoded document")
	assert.Contains(t, body, `"type":"heading"`)
	assert.Contains(t, body, `"text":"there"`)
}

func TestPublishDefaultSectionFromConfig(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 105, "default-section")
	c := newTestClient(t, tr, func(cfg *substack.Config) {
		cfg.DefaultSectionID = 9
	})

	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Default section").BodyMarkup("<p>x</p>"))
	require.NoError(t, err)

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Equal(t, float64(9), merge["draft_section_id"])
	assert.Equal(t, true, merge["section_chosen"])
}

func TestPublishSendFlag(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 106, "send-flag")
	c := newTestClient(t, tr)

	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Notify").BodyMarkup("<p>x</p>").Section(7))
	require.NoError(t, err)
	pub := callBody(t, findCall(t, tr, "POST", "/publish"))
	assert.Equal(t, true, pub["send"])

	tr2 := mock.NewTransport()
	stubDraftLifecycle(tr2, 107, "silent")
	c2 := newTestClient(t, tr2)

	_, _, err = c2.Publish(context.Background(),
		substack.NewPost("Quiet").BodyMarkup("<p>x</p>").Section(7).Silent())
	require.NoError(t, err)
	pub = callBody(t, findCall(t, tr2, "POST", "/publish"))
	assert.Equal(t, false, pub["send"])
}

func TestPublishPaidAudience(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 113, "paid-post")
	c := newTestClient(t, tr)

	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Paid post").
			BodyMarkup("<p>subscribers only</p>").
			Section(7).
			Audience(substack.AudiencePaidOnly))
	require.NoError(t, err)

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Equal(t, "paid", merge["audience"])
}

func TestPublishWithShareNote(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 108, "hello-world")
	tr.Respond("POST", "/comment/attachment", map[string]string{"id": "att-9"})
	tr.Respond("POST", "/comment/feed", map[string]int64{"id": 55})
	c := newTestClient(t, tr)

	draft, note, err := c.Publish(context.Background(),
		substack.NewPost("Hello world").
			BodyMarkup("<p>body</p>").
			Section(7).
			ShareText("Just published!"))

	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.True(t, draft.Published)
	require.NotNil(t, note)
	assert.Equal(t, int64(55), note.ID)
	assert.Contains(t, note.AttachedURL, "https://pub.test/p/hello-world")
	assert.Contains(t, note.AttachedURL, "showWelcomeOnShare=true")

	attach := callBody(t, findCall(t, tr, "POST", "/comment/attachment"))
	assert.Equal(t, "link", attach["type"])
	assert.Contains(t, attach["url"], "showWelcomeOnShare=true")
}

func TestPublishShareFailureIsNonFatal(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 109, "share-fails")
	tr.Fail("POST", "/comment/attachment", &substack.RemoteError{StatusCode: 500, Body: "feed down"})
	c := newTestClient(t, tr)

	draft, note, err := c.Publish(context.Background(),
		substack.NewPost("Share fails").
			BodyMarkup("<p>body</p>").
			Section(7).
			ShareText("oh well"))

	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.True(t, draft.Published)
	assert.Nil(t, note)
}

func TestPublishMergeFailureReturnsPartialDraft(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("POST", "/drafts", map[string]any{"id": 110})
	tr.Fail("PUT", "/drafts", &substack.RemoteError{StatusCode: 422, Body: "bad body"})
	c := newTestClient(t, tr)

	draft, note, err := c.Publish(context.Background(),
		substack.NewPost("Merge fails").BodyMarkup("<p>body</p>").Section(7))

	require.Error(t, err)
	assert.Nil(t, note)
	require.NotNil(t, draft)
	assert.Equal(t, substack.DraftID(110), draft.ID)
	assert.False(t, draft.Published)

	var re *substack.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, substack.StageMergeContent, re.Stage)
	assert.Equal(t, 422, re.StatusCode)

	assert.Equal(t, 0, tr.CallCount("POST", "/publish"))
}

func TestPublishGuardsAlreadyPublishedDraft(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("POST", "/drafts", map[string]any{"id": 112})
	tr.Respond("PUT", "/drafts", map[string]any{"id": 112, "is_published": true})
	c := newTestClient(t, tr)

	draft, note, err := c.Publish(context.Background(),
		substack.NewPost("Already live").BodyMarkup("<p>body</p>").Section(7))

	assert.ErrorIs(t, err, substack.ErrAlreadyPublished)
	assert.Nil(t, note)
	require.NotNil(t, draft)
	assert.True(t, draft.Published)
	assert.Equal(t, 0, tr.CallCount("POST", "/publish"))
}

func TestPublishPrebuiltDocument(t *testing.T) {
	tr := mock.NewTransport()
	stubDraftLifecycle(tr, 111, "prebuilt")
	c := newTestClient(t, tr)

	doc := documentWith("Prebuilt body")
	_, _, err := c.Publish(context.Background(),
		substack.NewPost("Prebuilt").Document(doc).Section(7))
	require.NoError(t, err)

	merge := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Contains(t, merge["draft_body"], "Prebuilt body")
}
