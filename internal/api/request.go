package api

import (
	"net/url"
	"strconv"
	"time"
)

// Request describes one logical API call. Instances are ephemeral; the
// dispatcher never mutates a Request after Do returns.
type Request struct {
	Method string
	Path   string
	Query  *Query
	Body   any
	// Headers override the default headers for this call.
	Headers map[string]string
	// AccountID selects the rate-limit bucket. Empty means the shared
	// global bucket.
	AccountID string
	// Timeout overrides the client-level timeout for this call.
	Timeout time.Duration
}

// RequestOption customizes a single API call.
type RequestOption func(*Request)

// WithAccount routes the call through the given account's rate-limit
// bucket and attaches the account id to any resulting error.
func WithAccount(accountID string) RequestOption {
	return func(r *Request) {
		r.AccountID = accountID
	}
}

// WithHeader sets an extra header for this call, overriding defaults.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithRequestTimeout overrides the client timeout for this call.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = timeout
	}
}

type queryPair struct {
	key   string
	value string
}

// Query builds a query string with explicit, ordered insertion.
// Optional parameters are only present when their Set*Opt variant is
// given a non-nil value; absent parameters never appear in the encoded
// string. Parameters encode in the order they were set.
type Query struct {
	pairs []queryPair
}

// NewQuery returns an empty query builder.
func NewQuery() *Query {
	return &Query{}
}

// Set inserts a string parameter.
func (q *Query) Set(key, value string) *Query {
	q.pairs = append(q.pairs, queryPair{key, value})
	return q
}

// SetInt inserts an integer parameter.
func (q *Query) SetInt(key string, value int) *Query {
	return q.Set(key, strconv.Itoa(value))
}

// SetBool inserts a boolean parameter as literal "true" or "false".
func (q *Query) SetBool(key string, value bool) *Query {
	return q.Set(key, strconv.FormatBool(value))
}

// SetOpt inserts a string parameter when value is non-nil.
func (q *Query) SetOpt(key string, value *string) *Query {
	if value == nil {
		return q
	}
	return q.Set(key, *value)
}

// SetIntOpt inserts an integer parameter when value is non-nil.
func (q *Query) SetIntOpt(key string, value *int) *Query {
	if value == nil {
		return q
	}
	return q.SetInt(key, *value)
}

// SetBoolOpt inserts a boolean parameter when value is non-nil.
func (q *Query) SetBoolOpt(key string, value *bool) *Query {
	if value == nil {
		return q
	}
	return q.SetBool(key, *value)
}

// Empty reports whether no parameters have been set.
func (q *Query) Empty() bool {
	return q == nil || len(q.pairs) == 0
}

// Encode serializes the parameters in insertion order.
func (q *Query) Encode() string {
	if q.Empty() {
		return ""
	}
	var b []byte
	for i, p := range q.pairs {
		if i > 0 {
			b = append(b, '&')
		}
		b = append(b, url.QueryEscape(p.key)...)
		b = append(b, '=')
		b = append(b, url.QueryEscape(p.value)...)
	}
	return string(b)
}
