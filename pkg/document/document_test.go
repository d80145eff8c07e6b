package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b992/substack-go/pkg/document"
)

func TestEmptyDocumentMarshalsToEmptyContent(t *testing.T) {
	raw, err := json.Marshal(document.Document{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(raw))
}

func TestHeadingAndParagraphSchema(t *testing.T) {
	doc := document.New(
		document.Heading(2, document.Text("Title")),
		document.Paragraph(
			document.Text("Hello "),
			document.Styled("world", document.Bold),
		),
	)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "doc",
		"content": [
			{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Title"}]},
			{"type":"paragraph","content":[
				{"type":"text","text":"Hello "},
				{"type":"text","text":"world","marks":[{"type":"strong"}]}
			]}
		]
	}`, string(raw))
}

func TestLinkMarkCarriesFixedAttributes(t *testing.T) {
	doc := document.New(document.Paragraph(
		document.Styled("docs", document.Link("https://example.com/a?b=c")),
	))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded struct {
		Content []struct {
			Content []struct {
				Marks []struct {
					Type  string `json:"type"`
					Attrs struct {
						Href   string  `json:"href"`
						Target string  `json:"target"`
						Rel    string  `json:"rel"`
						Class  *string `json:"class"`
					} `json:"attrs"`
				} `json:"marks"`
			} `json:"content"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	mark := decoded.Content[0].Content[0].Marks[0]
	assert.Equal(t, "link", mark.Type)
	assert.Equal(t, "https://example.com/a?b=c", mark.Attrs.Href)
	assert.Equal(t, "_blank", mark.Attrs.Target)
	assert.Equal(t, "noopener noreferrer nofollow", mark.Attrs.Rel)
	assert.Nil(t, mark.Attrs.Class)
}

func TestOrderedListSchema(t *testing.T) {
	doc := document.NewBuilder().OrderedList("first", "second").Build()

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "doc",
		"content": [
			{"type":"ordered_list","attrs":{"start":1,"order":1},"content":[
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"first"}]}]},
				{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","text":"second"}]}]}
			]}
		]
	}`, string(raw))
}

func TestPlainTextFlattensBlocksAndItems(t *testing.T) {
	doc := document.NewBuilder().
		Heading(3, "About").
		Text("Plain body.").
		BulletList("one", "two").
		Build()

	assert.Equal(t, "About\nPlain body.\none\ntwo", doc.PlainText())
}

func TestBodyJSONIsStringEncodedSchema(t *testing.T) {
	doc := document.NewBuilder().Text("hi").Build()

	body, err := doc.BodyJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`, body)
}

func TestBuilderCopyIsStable(t *testing.T) {
	b := document.NewBuilder().Text("one")
	first := b.Build()
	b.Text("two")
	second := b.Build()

	assert.Len(t, first.Nodes, 1)
	assert.Len(t, second.Nodes, 2)
	assert.True(t, document.Document{}.IsEmpty())
	assert.False(t, first.IsEmpty())
}
