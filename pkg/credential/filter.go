// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package credential

import "regexp"

// pattern pairs a named credential shape with the regexp that finds it.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// defaultPatterns covers the credential shapes named in the spec: API
// keys, bearer tokens, basic auth, JWT-like triples, PEM private keys,
// and database URIs carrying a password.
var defaultPatterns = []pattern{
	{"api_key", regexp.MustCompile(`(?i)\b(api[_-]?key|apikey)\s*[=:]\s*['"]?([A-Za-z0-9_\-]{16,})['"]?`)},
	{"bearer_token", regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._\-]{10,}`)},
	{"basic_auth", regexp.MustCompile(`(?i)\bBasic\s+[A-Za-z0-9+/=]{10,}`)},
	{"jwt", regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{5,}\.[A-Za-z0-9_-]{5,}\.[A-Za-z0-9_-]{5,}\b`)},
	{"pem_private_key", regexp.MustCompile(`(?s)-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----.*?-----END (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{"db_uri_password", regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://[^:\s/]+:[^@\s/]+@`)},
}

const redacted = "[REDACTED]"

// Filter scrubs credential-shaped substrings out of arbitrary text
// before it reaches a log sink. It is stateless and safe for concurrent
// use.
type Filter struct {
	patterns []pattern
}

// NewFilter builds a Filter over the default credential patterns, plus
// any extra named patterns supplied by the caller (e.g. a
// deployment-specific internal token format).
func NewFilter(extra ...pattern) *Filter {
	f := &Filter{patterns: make([]pattern, 0, len(defaultPatterns)+len(extra))}
	f.patterns = append(f.patterns, defaultPatterns...)
	f.patterns = append(f.patterns, extra...)
	return f
}

// NewPattern builds a named extra pattern for NewFilter.
func NewPattern(name, expr string) pattern {
	return pattern{name: name, re: regexp.MustCompile(expr)}
}

// Redact returns line with every matching substring replaced.
func (f *Filter) Redact(line string) string {
	for _, p := range f.patterns {
		line = p.re.ReplaceAllString(line, redacted)
	}
	return line
}

// Matches reports whether line contains any credential-shaped
// substring, without modifying it.
func (f *Filter) Matches(line string) bool {
	for _, p := range f.patterns {
		if p.re.MatchString(line) {
			return true
		}
	}
	return false
}
