package substack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/b992/substack-go/pkg/logger"
)

// Transport issues authenticated JSON requests. URLs are absolute: the
// client chooses between the publication host and the global host per call.
// Implementations must be safe for concurrent use.
type Transport interface {
	Get(ctx context.Context, url string, out any) error
	Post(ctx context.Context, url string, body, out any) error
	Put(ctx context.Context, url string, body, out any) error
	Delete(ctx context.Context, url string) error
}

// Session holds the browser cookies that authenticate against the private
// API. SID is sufficient on its own; the other two are sent when present.
type Session struct {
	SID       string // substack.sid cookie
	SessionID string // connect.sid cookie, legacy
	LLI       string // substack.lli cookie
}

func (s Session) cookies() []*http.Cookie {
	var cs []*http.Cookie
	if s.SID != "" {
		cs = append(cs, &http.Cookie{Name: "substack.sid", Value: s.SID})
	}
	if s.SessionID != "" {
		cs = append(cs, &http.Cookie{Name: "connect.sid", Value: s.SessionID})
	}
	if s.LLI != "" {
		cs = append(cs, &http.Cookie{Name: "substack.lli", Value: s.LLI})
	}
	return cs
}

func (s Session) isZero() bool {
	return s.SID == "" && s.SessionID == "" && s.LLI == ""
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxErrorBody caps how much of a rejection body is kept in a RemoteError.
const maxErrorBody = 2048

// CookieTransport is the standard Transport: cookie-authenticated HTTP with
// JSON bodies. Non-2xx responses become *RemoteError.
type CookieTransport struct {
	Client    *http.Client
	Session   Session
	UserAgent string
	Logger    logger.Logger
}

func (t *CookieTransport) Get(ctx context.Context, url string, out any) error {
	return t.do(ctx, http.MethodGet, url, nil, out)
}

func (t *CookieTransport) Post(ctx context.Context, url string, body, out any) error {
	return t.do(ctx, http.MethodPost, url, body, out)
}

func (t *CookieTransport) Put(ctx context.Context, url string, body, out any) error {
	return t.do(ctx, http.MethodPut, url, body, out)
}

func (t *CookieTransport) Delete(ctx context.Context, url string) error {
	return t.do(ctx, http.MethodDelete, url, nil, nil)
}

func (t *CookieTransport) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, url, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range t.Session.cookies() {
		req.AddCookie(c)
	}

	t.logger().Debug("request", "method", method, "url", url)

	resp, err := t.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		t.logger().Debug("request rejected", "method", method, "url", url, "status", resp.StatusCode)
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, url, err)
	}
	return nil
}

func (t *CookieTransport) httpClient() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}

func (t *CookieTransport) userAgent() string {
	if t.UserAgent != "" {
		return t.UserAgent
	}
	return defaultUserAgent
}

func (t *CookieTransport) logger() logger.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logger.Nop()
}
