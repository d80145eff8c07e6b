package substack

import "context"

// Profile is the account behind the session cookie.
type Profile struct {
	ID       UserID `json:"id"`
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	PhotoURL string `json:"photo_url"`
}

// Profile fetches the session's own profile from the global host.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.tr.Get(ctx, c.globalAPI("/user/profile/self"), &p); err != nil {
		return nil, stageErr(StageProfile, err)
	}
	return &p, nil
}

// resolveAuthor returns the user id drafts are attributed to, fetching and
// caching it from the profile when the configuration left it unset.
func (c *Client) resolveAuthor(ctx context.Context) (UserID, error) {
	c.mu.Lock()
	id := c.authorID
	c.mu.Unlock()
	if id != 0 {
		return id, nil
	}

	p, err := c.Profile(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.authorID = p.ID
	c.mu.Unlock()
	return p.ID, nil
}
