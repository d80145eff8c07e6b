package substack

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPublicationURL is returned by New when Config.PublicationURL is
	// empty.
	ErrNoPublicationURL = errors.New("substack: publication URL is required")

	// ErrNoSession is returned by New when no session cookie and no custom
	// transport were supplied.
	ErrNoSession = errors.New("substack: session cookie is required")

	// ErrNoTitle is returned by Publish for a request without a title.
	ErrNoTitle = errors.New("substack: post title is required")

	// ErrNoSection is returned by Publish before any content is merged when
	// neither the request nor the client configuration names a section. The
	// platform rejects publishing sectionless drafts, but only at publish
	// time, after content has already been persisted.
	ErrNoSection = errors.New("substack: no section assigned to draft")

	// ErrNotAnImage is returned by UploadImage for inline data whose mime
	// type is not image/*, before any network call.
	ErrNotAnImage = errors.New("substack: inline asset is not an image")

	// ErrAlreadyPublished is returned when an operation that requires an
	// unpublished draft is attempted on a published one.
	ErrAlreadyPublished = errors.New("substack: draft is already published")
)

// Stage names the pipeline step a remote rejection occurred in, so callers
// can distinguish "draft exists but unpublished" from "share failed but the
// post is live".
type Stage string

const (
	StageCreateDraft  Stage = "CreateDraft"
	StageMergeContent Stage = "MergeContent"
	StagePublish      Stage = "Publish"
	StageDeleteDraft  Stage = "DeleteDraft"
	StageListDrafts   Stage = "ListDrafts"
	StageUploadImage  Stage = "UploadImage"
	StageShareAsNote  Stage = "ShareAsNote"
	StageProfile      Stage = "Profile"
)

// RemoteError is a non-2xx response from the platform. StatusCode and Body
// carry the raw rejection; Stage is filled in by the client method that
// issued the request.
type RemoteError struct {
	Stage      Stage
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("substack: remote rejected request: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("substack: %s rejected: status %d: %s", e.Stage, e.StatusCode, e.Body)
}

// stageErr tags a transport error with the pipeline stage it happened in.
func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		re.Stage = stage
		return re
	}
	return fmt.Errorf("substack: %s: %w", stage, err)
}
