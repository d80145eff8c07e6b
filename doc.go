// Package substack is a client for Substack's private publishing API. It
// drives the full article lifecycle (create draft, upload cover image, merge
// content, publish) plus short feed notes, against the two hosts the platform
// splits its API across: the per-publication subdomain for draft operations
// and the shared substack.com host for image upload, note creation and
// profile lookup.
//
// The typical entry point is Client.Publish, which runs the whole pipeline
// from a PublishRequest:
//
//	client, err := substack.New(substack.Config{
//		PublicationURL: "https://example.substack.com",
//		Session:        substack.Session{SID: os.Getenv("SUBSTACK_SID")},
//		DefaultSectionID: 12345,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	draft, note, err := client.Publish(ctx, substack.NewPost("Hello").
//		BodyMarkup("<p>First post.</p>").
//		ShareText("Just published!"))
//
// Article bodies are structured documents (pkg/document) produced either
// from the tag subset converter or the Markdown converter in pkg/markup, or
// built directly with document.Builder.
package substack
