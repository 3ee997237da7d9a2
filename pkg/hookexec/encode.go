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

package hookexec

import (
	"encoding/json"

	"github.com/kadirpekel/hector/pkg/hooks"
)

// wireResult is the JSON-stable encoding of a hooks.Result for replay
// persistence and result comparison.
type wireResult struct {
	Kind             hooks.Kind    `json:"kind"`
	Value            any           `json:"value,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	RetryDelayMS     int64         `json:"retry_delay_ms,omitempty"`
	RetryMaxAttempts int           `json:"retry_max_attempts,omitempty"`
	Target           hooks.ComponentID `json:"target,omitempty"`
}

func encodeResult(r hooks.Result) []byte {
	w := wireResult{
		Kind:             r.Kind,
		Value:            r.Value,
		Reason:           r.Reason,
		RetryDelayMS:     r.RetryDelay.Milliseconds(),
		RetryMaxAttempts: r.RetryMaxAttempts,
		Target:           r.Target,
	}
	b, err := json.Marshal(w)
	if err != nil {
		return []byte(`{"kind":"` + string(r.Kind) + `"}`)
	}
	return b
}
