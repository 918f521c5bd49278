package sources

import "strings"

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(s Source, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"
)

// Headers builds the common request headers from a source config (skips empty values).
func Headers(s Source) map[string]string {
	headers := make(map[string]string, 4)

	if v := ConfigString(s, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigAcceptKey, ""); v != "" {
		headers["Accept"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}
	if v := ConfigString(s, ConfigCacheControlKey, ""); v != "" {
		headers["Cache-Control"] = v
	}

	return headers
}
