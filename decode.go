// FILE: lixenwraith/confman/decode.go
package confman

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultTagName is the struct tag read by Scan and NewStructSource.
const DefaultTagName = "toml"

// Scan decodes the section at basePath (empty for the whole tree) into target,
// which must be a non-nil pointer. Field names come from `toml` tags. Strings
// convert to durations, times (RFC 3339), net.IP, net.IPNet, url.URL and
// comma-separated slices. A missing section decodes as empty.
func (c *Config) Scan(basePath string, target any) error {
	return c.scan(basePath, target, DefaultTagName)
}

// ScanTag is Scan with a different struct tag, e.g. "json" or "yaml".
func (c *Config) ScanTag(basePath, tagName string, target any) error {
	return c.scan(basePath, target, tagName)
}

// scan is the single authoritative function for decoding configuration into
// target structures.
func (c *Config) scan(basePath string, target any, tagName string) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	// Navigate to basePath section
	var sectionMap map[string]any
	sectionData, found := navigateToPath(c.tree, basePath)
	switch {
	case !found:
		sectionMap = make(map[string]any) // Empty section
	case sectionData.Kind() == KindMapping:
		sectionMap = sectionData.m.ToMap()
	default:
		return fmt.Errorf("path %q refers to non-mapping value (%s)", basePath, sectionData.Kind())
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}

	return nil
}

// decodeHook returns the composite decode hook for all type conversions.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Network types
		stringHook(reflect.TypeOf(net.IP{}), 45, parseIP),
		stringHook(reflect.TypeOf(net.IPNet{}), 49, parseIPNet),
		stringHook(reflect.TypeOf(url.URL{}), 2048, parseURL),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringHook converts strings to target (or *target) with parse. parse returns
// a pointer to the parsed value. Inputs longer than maxLen are rejected before
// parsing.
func stringHook(target reflect.Type, maxLen int, parse func(string) (any, error)) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		if t != target && !(isPtr && t.Elem() == target) {
			return data, nil
		}

		str := data.(string)
		if len(str) > maxLen {
			return nil, fmt.Errorf("value too long for %s: %d bytes", target, len(str))
		}
		parsed, err := parse(str)
		if err != nil {
			return nil, err
		}
		if isPtr {
			return parsed, nil
		}
		return reflect.ValueOf(parsed).Elem().Interface(), nil
	}
}

func parseIP(s string) (any, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	return &ip, nil
}

func parseIPNet(s string) (any, error) {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}
	return ipnet, nil
}

func parseURL(s string) (any, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	return u, nil
}
