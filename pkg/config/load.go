// Copyright 2025 walteh LLC
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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📂 DiscoveryNames are looked up in the traversal root when no config file
// is given explicitly, in this order
var DiscoveryNames = []string{".aethermig.yaml", ".aethermig.yml", ".aethermig.json", ".aethermig.hcl"}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	return cfg, nil
}

// 🔍 Discover returns the first config file found in root, or "" if none
func Discover(root string) (string, error) {
	for _, name := range DiscoveryNames {
		candidate := filepath.Join(root, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", errors.Errorf("checking %s: %w", candidate, err)
		}
	}
	return "", nil
}

// 🧭 Resolve loads path if given, else a discovered file in root, else the
// compiled-in defaults
func Resolve(ctx context.Context, path, root string) (*Config, error) {
	if path == "" {
		found, err := Discover(root)
		if err != nil {
			return nil, errors.Errorf("discovering config: %w", err)
		}
		path = found
	}

	if path == "" {
		zerolog.Ctx(ctx).Debug().Msg("no config file, using compiled-in defaults")
		return Default(), nil
	}

	return Load(ctx, path)
}
