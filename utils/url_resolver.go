// Package utils provides utility functions for the SurfSense client
package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveAgainstBase joins a request path with the configured base origin.
// The base must be an absolute URL; the request path keeps its query string
// and loses any fragment. Absolute request URLs are accepted only when they
// already sit on the base origin.
func ResolveAgainstBase(baseURL, requestURL string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", fmt.Errorf("base URL is empty")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base URL %q is not absolute", baseURL)
	}

	ref, err := url.Parse(requestURL)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", requestURL, err)
	}

	if ref.IsAbs() {
		if ref.Scheme != base.Scheme || ref.Host != base.Host {
			return "", fmt.Errorf("request URL %q is not on origin %s://%s", requestURL, base.Scheme, base.Host)
		}
		ref.Fragment = ""
		return ref.String(), nil
	}

	resolved := *base
	resolved.Path = joinPaths(base.Path, ref.Path)
	resolved.RawQuery = ref.RawQuery
	resolved.Fragment = ""

	return resolved.String(), nil
}

// SameOrigin reports whether two absolute URLs share scheme and host.
func SameOrigin(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return ua.Scheme == ub.Scheme && ua.Host == ub.Host
}

func joinPaths(basePath, refPath string) string {
	basePath = strings.TrimSuffix(basePath, "/")
	if refPath == "" {
		if basePath == "" {
			return "/"
		}
		return basePath
	}
	if !strings.HasPrefix(refPath, "/") {
		refPath = "/" + refPath
	}
	return basePath + refPath
}
