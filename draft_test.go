package substack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	substack "github.com/b992/substack-go"
	"github.com/b992/substack-go/internal/mock"
)

func TestCreateDraftPayload(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("POST", "/drafts", map[string]any{"id": 201})
	c := newTestClient(t, tr)

	draft, err := c.CreateDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, substack.DraftID(201), draft.ID)

	body := callBody(t, findCall(t, tr, "POST", "/drafts"))
	assert.Equal(t, "everyone", body["audience"])
	assert.Equal(t, "newsletter", body["type"])
	assert.Equal(t, true, body["editor_v2"])

	bylines, ok := body["draft_bylines"].([]any)
	require.True(t, ok)
	require.Len(t, bylines, 1)
	byline := bylines[0].(map[string]any)
	assert.Equal(t, float64(42), byline["id"])
	assert.Equal(t, float64(42), byline["user_id"])
	assert.Equal(t, true, byline["is_draft"])
	assert.Equal(t, false, byline["is_guest"])

	assert.Contains(t, body["draft_body"], `"content":[]`)
}

func TestCreateDraftResolvesAuthorOnce(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("GET", "/user/profile/self", map[string]any{"id": 88, "name": "A"})
	tr.Respond("POST", "/drafts", map[string]any{"id": 202})
	c := newTestClient(t, tr, func(cfg *substack.Config) {
		cfg.AuthorID = 0
	})

	_, err := c.CreateDraft(context.Background())
	require.NoError(t, err)
	_, err = c.CreateDraft(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, tr.CallCount("GET", "/user/profile/self"))

	body := callBody(t, findCall(t, tr, "POST", "/drafts"))
	byline := body["draft_bylines"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(88), byline["user_id"])
}

func TestDraftDecodePrefersPublishedFields(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("GET", "/drafts/301", map[string]any{
		"id":             301,
		"title":          "Published title",
		"draft_title":    "Draft title",
		"draft_subtitle": "Draft sub",
		"section_id":     5,
		"is_published":   true,
		"slug":           "published-title",
	})
	c := newTestClient(t, tr)

	draft, err := c.GetDraft(context.Background(), 301)
	require.NoError(t, err)
	assert.Equal(t, "Published title", draft.Title)
	assert.Equal(t, "Draft sub", draft.Subtitle)
	assert.Equal(t, substack.SectionID(5), draft.SectionID)
	assert.True(t, draft.Published)
}

func TestDraftDecodeFallsBackToDraftFields(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("GET", "/drafts/302", map[string]any{
		"id":               302,
		"draft_title":      "Only draft title",
		"draft_section_id": 6,
	})
	c := newTestClient(t, tr)

	draft, err := c.GetDraft(context.Background(), 302)
	require.NoError(t, err)
	assert.Equal(t, "Only draft title", draft.Title)
	assert.Equal(t, substack.SectionID(6), draft.SectionID)
	assert.False(t, draft.Published)
}

func TestUpdateDraftFullReplaceClearsFields(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("PUT", "/drafts", map[string]any{"id": 303})
	c := newTestClient(t, tr)

	_, err := c.UpdateDraft(context.Background(), 303, substack.DraftContent{
		Title: "Stripped down",
	})
	require.NoError(t, err)

	// empty content fields must be sent, not omitted, so a merge can clear
	// previously stored values
	body := callBody(t, findCall(t, tr, "PUT", "/drafts"))
	assert.Contains(t, body, "cover_image")
	assert.Equal(t, "", body["cover_image"])
	assert.Contains(t, body, "draft_section_id")
	assert.Nil(t, body["draft_section_id"])
	assert.Equal(t, false, body["section_chosen"])
	assert.Equal(t, []any{}, body["post_tags"])
	assert.Equal(t, "everyone", body["audience"])
}

func TestListDraftsPaging(t *testing.T) {
	tr := mock.NewTransport()
	tr.Respond("GET", "/drafts", []map[string]any{
		{"id": 401, "draft_title": "one"},
		{"id": 402, "draft_title": "two"},
	})
	c := newTestClient(t, tr)

	pager := c.Drafts(substack.DraftListOptions{Limit: 3})

	page, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "one", page[0].Title)

	// fewer results than the limit ends the pager
	page, err = pager.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, page)

	call := findCall(t, tr, "GET", "/drafts")
	assert.Contains(t, call.URL, "offset=0")
	assert.Contains(t, call.URL, "limit=3")
}

func TestDeleteDraftStageError(t *testing.T) {
	tr := mock.NewTransport()
	tr.Fail("DELETE", "/drafts/500", &substack.RemoteError{StatusCode: 400, Body: "already published"})
	c := newTestClient(t, tr)

	err := c.DeleteDraft(context.Background(), 500)
	var re *substack.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, substack.StageDeleteDraft, re.Stage)
	assert.Equal(t, 400, re.StatusCode)
}

func TestDraftPublicURL(t *testing.T) {
	d := &substack.Draft{Slug: "my-post"}
	assert.Equal(t, "https://pub.test/p/my-post", d.PublicURL("https://pub.test"))
}
