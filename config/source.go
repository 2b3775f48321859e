// Copyright 2025 Poiesic Systems
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


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2/altsrc"
)

// InputSource opens path as an altsrc input source for flag values.
// An empty path, or a missing file when required is false, yields an empty
// source so the default config location may be absent.
func InputSource(path string, required bool) (altsrc.InputSourceContext, error) {
	if path == "" {
		return emptySource(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return emptySource(), nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	switch FormatForPath(path) {
	case FormatTOML:
		return altsrc.NewTomlSourceFromFile(path)
	default:
		return altsrc.NewYamlSourceFromFile(path)
	}
}

func emptySource() altsrc.InputSourceContext {
	return altsrc.NewMapInputSource("", map[interface{}]interface{}{})
}
