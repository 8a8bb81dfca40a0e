// Package fetch retrieves input objects and turns them into raw tables with
// the retrieval strategy a source declares.
package fetch

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Supported locator schemes.
const (
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
	SchemeFile = "file"
)

// Locator identifies an input object: "<scheme>://<bucket>/<key>", a file://
// URL or a bare local path.
type Locator struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseLocator parses raw. s3a:// and s3n:// are read as s3://.
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, fmt.Errorf("empty input locator")
	}
	if !strings.Contains(raw, "://") {
		return Locator{Scheme: SchemeFile, Key: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("invalid input locator %q: %w", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "s3a", "s3n":
		scheme = SchemeS3
	case "gcs":
		scheme = SchemeGCS
	}

	switch scheme {
	case SchemeFile:
		p := u.Path
		if u.Host != "" {
			p = u.Host + p
		}
		return Locator{Scheme: SchemeFile, Key: p}, nil
	case SchemeS3, SchemeGCS:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Locator{}, fmt.Errorf("input locator %q needs a bucket and a key", raw)
		}
		return Locator{Scheme: scheme, Bucket: u.Host, Key: key}, nil
	default:
		return Locator{}, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
}

// Name is the base name of the object, used for type detection.
func (l Locator) Name() string {
	return path.Base(strings.ReplaceAll(l.Key, "\\", "/"))
}

func (l Locator) String() string {
	if l.Scheme == SchemeFile || l.Scheme == "" {
		return l.Key
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}
