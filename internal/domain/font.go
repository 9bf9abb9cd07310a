/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FontSpec describes the font of a text cell. Values are passed through
// unvalidated; a family that cannot be resolved falls back at render time.
type FontSpec struct {
	Family string
	Size   float64 // points
	Weight string  // "", "normal" or "bold"
}

// Bold reports whether the weight asks for a bold face.
func (f FontSpec) Bold() bool { return strings.EqualFold(strings.TrimSpace(f.Weight), "bold") }

// IsZero reports whether no font was chosen.
func (f FontSpec) IsZero() bool { return f.Family == "" && f.Size == 0 && f.Weight == "" }

// MarshalJSON writes the layout file form: [family, size] or [family, size, weight].
func (f FontSpec) MarshalJSON() ([]byte, error) {
	v := []any{f.Family, f.Size}
	if f.Weight != "" {
		v = append(v, f.Weight)
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts [family, size?, weight?] and, for older files, a bare family string.
func (f *FontSpec) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*f = FontSpec{Family: name}
		return nil
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("font: expected [family, size, weight?]: %w", err)
	}
	if len(parts) == 0 || len(parts) > 3 {
		return errors.New("font: expected 1 to 3 elements")
	}
	var out FontSpec
	if err := json.Unmarshal(parts[0], &out.Family); err != nil {
		return fmt.Errorf("font family: %w", err)
	}
	if len(parts) > 1 {
		if err := json.Unmarshal(parts[1], &out.Size); err != nil {
			return fmt.Errorf("font size: %w", err)
		}
	}
	if len(parts) > 2 {
		if err := json.Unmarshal(parts[2], &out.Weight); err != nil {
			return fmt.Errorf("font weight: %w", err)
		}
	}
	*f = out
	return nil
}

func (f FontSpec) String() string {
	s := fmt.Sprintf("%s %gpt", f.Family, f.Size)
	if f.Weight != "" {
		s += " " + f.Weight
	}
	return s
}
