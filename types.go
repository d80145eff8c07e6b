package substack

import "strconv"

// DraftID identifies a draft or published post. Assigned by the platform on
// draft creation and immutable afterward.
type DraftID int64

func (id DraftID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// SectionID identifies a publication section (category). A draft must carry
// one before it can be published.
type SectionID int64

// UserID identifies a platform user account.
type UserID int64
