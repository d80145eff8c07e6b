package substack

import (
	"net/http"
	"strings"
	"sync"

	"github.com/b992/substack-go/pkg/logger"
)

// GlobalURL is the shared host used for image upload, note creation and
// profile lookup. Draft lifecycle calls go to the publication subdomain.
const GlobalURL = "https://substack.com"

const apiPrefix = "/api/v1"

// Config configures a Client. PublicationURL is required; either Session or
// a custom Transport must be set.
type Config struct {
	// PublicationURL is the publication's base URL, for example
	// "https://example.substack.com".
	PublicationURL string

	// Session authenticates the default transport.
	Session Session

	// AuthorID attributes drafts to this user. When zero it is resolved
	// once from the session's profile.
	AuthorID UserID

	// DefaultSectionID is used when a PublishRequest does not name a
	// section of its own.
	DefaultSectionID SectionID

	// UserAgent overrides the default browser user agent string.
	UserAgent string

	// GlobalHostURL overrides GlobalURL. Used in tests.
	GlobalHostURL string

	// Transport replaces the default cookie transport entirely.
	Transport Transport

	// HTTPClient is used by the default transport when Transport is nil.
	HTTPClient *http.Client

	// Logger receives request traces at Debug and degradations at Warn.
	// Nil means silent.
	Logger logger.Logger
}

// Client talks to one publication. Safe for concurrent use.
type Client struct {
	pub      string
	global   string
	tr       Transport
	log      logger.Logger
	defaults Config

	mu       sync.Mutex
	authorID UserID
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.PublicationURL == "" {
		return nil, ErrNoPublicationURL
	}
	if cfg.Transport == nil && cfg.Session.isZero() {
		return nil, ErrNoSession
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	tr := cfg.Transport
	if tr == nil {
		tr = &CookieTransport{
			Client:    cfg.HTTPClient,
			Session:   cfg.Session,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		}
	}
	global := cfg.GlobalHostURL
	if global == "" {
		global = GlobalURL
	}

	return &Client{
		pub:      strings.TrimRight(cfg.PublicationURL, "/"),
		global:   strings.TrimRight(global, "/"),
		tr:       tr,
		log:      log,
		defaults: cfg,
		authorID: cfg.AuthorID,
	}, nil
}

// PublicationURL returns the configured publication base URL.
func (c *Client) PublicationURL() string {
	return c.pub
}

// pubAPI builds a publication-host API URL.
func (c *Client) pubAPI(path string) string {
	return c.pub + apiPrefix + path
}

// globalAPI builds a global-host API URL.
func (c *Client) globalAPI(path string) string {
	return c.global + apiPrefix + path
}
