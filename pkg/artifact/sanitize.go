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

package artifact

import (
	"regexp"
	"strings"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// uriSchemeRe matches a leading "scheme://" or "scheme:" prefix (file:,
// s3:, http:, custom schemes), which sanitizeName rejects outright rather
// than trying to strip, since a caller meaning a literal colon in a name
// is indistinguishable from one meaning a URI.
var uriSchemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// sanitizeName enforces the spec's artifact-name policy: reject
// traversal tokens, absolute paths, drive letters and URI prefixes;
// replace path separators in whatever remains. The reference
// implementation left this under-specified (§9 open question); this is
// the tightened policy the spec mandates.
func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", corerr.Validationf("sanitize_name", "artifact name must not be empty")
	}
	if len(name) > 512 {
		return "", corerr.Validationf("sanitize_name", "artifact name too long (%d bytes)", len(name))
	}
	if strings.Contains(name, "..") {
		return "", corerr.Validationf("sanitize_name", "artifact name %q contains a traversal token", name)
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return "", corerr.Validationf("sanitize_name", "artifact name %q is an absolute path", name)
	}
	if len(name) >= 2 && name[1] == ':' {
		return "", corerr.Validationf("sanitize_name", "artifact name %q carries a drive prefix", name)
	}
	if uriSchemeRe.MatchString(name) {
		return "", corerr.Validationf("sanitize_name", "artifact name %q carries a URI scheme prefix", name)
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_")
	return replacer.Replace(name), nil
}
