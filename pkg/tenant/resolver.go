package tenant

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Resolver extracts a normalized tenant subdomain from a request.
// It returns an empty string when the request names no tenant.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts an ordinary function to Resolver.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// SubdomainResolver takes the tenant from the first label of the Host header.
type SubdomainResolver struct {
	// BaseDomain, when set, is the apex the platform is served from
	// (e.g. "example.com"). Only hosts of the form <tenant>.<BaseDomain>
	// resolve; any other host yields no tenant.
	BaseDomain string
}

// NewSubdomainResolver creates a SubdomainResolver. An empty baseDomain
// treats the first label of any host with more than two labels as the tenant.
func NewSubdomainResolver(baseDomain string) *SubdomainResolver {
	return &SubdomainResolver{BaseDomain: strings.Trim(strings.ToLower(baseDomain), ".")}
}

// Resolve returns "acme" for "acme.example.com". The label "www" is never a
// tenant. IP hosts and apex domains yield no tenant; a candidate label that is
// not a valid DNS label is an ErrInvalidIdentifier.
func (sr *SubdomainResolver) Resolve(r *http.Request) (string, error) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", nil
	}

	var candidate string
	if sr.BaseDomain != "" {
		rest, ok := strings.CutSuffix(host, "."+sr.BaseDomain)
		if !ok || rest == "" {
			return "", nil
		}
		if strings.Contains(rest, ".") {
			return "", fmt.Errorf("%w: nested subdomain %q", ErrInvalidIdentifier, rest)
		}
		candidate = rest
	} else {
		labels := strings.Split(host, ".")
		if len(labels) <= 2 {
			return "", nil
		}
		candidate = labels[0]
	}

	if candidate == "www" {
		return "", nil
	}
	return NormalizeSubdomain(candidate)
}

// HeaderResolver reads the tenant subdomain from a request header. It is
// meant for local development and internal callers without wildcard DNS.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a HeaderResolver, defaulting to "X-Tenant".
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant"
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve returns the normalized header value, or "" when the header is absent.
func (hr *HeaderResolver) Resolve(r *http.Request) (string, error) {
	v := r.Header.Get(hr.HeaderName)
	if v == "" {
		return "", nil
	}
	return NormalizeSubdomain(v)
}

// CompositeResolver tries resolvers in order and returns the first match.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a CompositeResolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve returns the first non-empty result. Errors are reported only when
// no resolver produced a tenant.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, res := range c.Resolvers {
		sub, err := res.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sub != "" {
			return sub, nil
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", nil
}
