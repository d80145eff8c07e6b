// Package mock provides a recording Transport for pipeline tests: every
// request is captured, responses are canned per method and URL fragment.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Call is one recorded request.
type Call struct {
	Method string
	URL    string
	Body   json.RawMessage
}

type rule struct {
	method string
	substr string
	out    any
	err    error
}

// Transport implements the client's Transport interface against canned
// responses. Unstubbed calls succeed and leave the output untouched.
type Transport struct {
	mu    sync.Mutex
	calls []Call
	rules []rule
}

func NewTransport() *Transport {
	return &Transport{}
}

// Respond stubs requests whose method matches and whose URL contains
// urlSubstr to answer with out.
func (t *Transport) Respond(method, urlSubstr string, out any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, rule{method: method, substr: urlSubstr, out: out})
}

// Fail stubs matching requests to return err.
func (t *Transport) Fail(method, urlSubstr string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, rule{method: method, substr: urlSubstr, err: err})
}

// Calls returns a copy of every recorded request in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// CallCount counts recorded requests matching method and URL fragment.
func (t *Transport) CallCount(method, urlSubstr string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.calls {
		if c.Method == method && strings.Contains(c.URL, urlSubstr) {
			n++
		}
	}
	return n
}

func (t *Transport) Get(ctx context.Context, url string, out any) error {
	return t.dispatch("GET", url, nil, out)
}

func (t *Transport) Post(ctx context.Context, url string, body, out any) error {
	return t.dispatch("POST", url, body, out)
}

func (t *Transport) Put(ctx context.Context, url string, body, out any) error {
	return t.dispatch("PUT", url, body, out)
}

func (t *Transport) Delete(ctx context.Context, url string) error {
	return t.dispatch("DELETE", url, nil, nil)
}

func (t *Transport) dispatch(method, url string, body, out any) error {
	var raw json.RawMessage
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mock: encoding %s %s body: %w", method, url, err)
		}
	}

	t.mu.Lock()
	t.calls = append(t.calls, Call{Method: method, URL: url, Body: raw})
	var matched *rule
	for i := range t.rules {
		r := &t.rules[i]
		if r.method == method && strings.Contains(url, r.substr) {
			matched = r
			break
		}
	}
	t.mu.Unlock()

	if matched == nil {
		return nil
	}
	if matched.err != nil {
		return matched.err
	}
	if out == nil || matched.out == nil {
		return nil
	}
	encoded, err := json.Marshal(matched.out)
	if err != nil {
		return fmt.Errorf("mock: encoding canned response for %s %s: %w", method, url, err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("mock: decoding canned response for %s %s: %w", method, url, err)
	}
	return nil
}
