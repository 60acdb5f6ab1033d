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
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/text"
	"github.com/walteh/aethermig/pkg/tokenmap"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the migration configuration. Empty lists in a config file
// fall back to the compiled-in defaults.
type Config struct {
	Mappings       []tokenmap.Mapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	TextExtensions []string           `json:"text_extensions,omitempty" yaml:"text_extensions,omitempty"`
	ExcludedDirs   []string           `json:"excluded_dirs,omitempty" yaml:"excluded_dirs,omitempty"`
	ProtectedFiles []string           `json:"protected_files,omitempty" yaml:"protected_files,omitempty"`

	location string
	tokens   *tokenmap.Map
	exts     map[string]struct{}
	excluded map[string]struct{}
}

// 📄 DefaultTextExtensions are the file extensions whose content is rewritten
var DefaultTextExtensions = []string{
	".md", ".yaml", ".yml", ".json", ".js", ".ts", ".py",
	".sh", ".txt", ".html", ".css", ".scss", ".less", ".mdx",
}

// 🚫 DefaultExcludedDirs are never descended into or renamed
var DefaultExcludedDirs = []string{".git", "node_modules", ".next", "dist", "build", "coverage"}

// 🔒 DefaultProtectedFiles are never content-rewritten: the migration tool's
// own source and the workflow that schedules it.
var DefaultProtectedFiles = []string{"**/rename-skills.js", "**/update-skill-identifiers.yml"}

// 🏭 Default returns the compiled-in configuration
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// 🔍 Validate fills defaults, normalises values and checks the configuration
func (cfg *Config) Validate() error {
	if len(cfg.Mappings) == 0 {
		cfg.Mappings = tokenmap.DefaultMappings()
	}
	if len(cfg.TextExtensions) == 0 {
		cfg.TextExtensions = append([]string(nil), DefaultTextExtensions...)
	}
	if len(cfg.ExcludedDirs) == 0 {
		cfg.ExcludedDirs = append([]string(nil), DefaultExcludedDirs...)
	}
	if len(cfg.ProtectedFiles) == 0 {
		cfg.ProtectedFiles = append([]string(nil), DefaultProtectedFiles...)
	}

	tokens, err := tokenmap.New(cfg.Mappings)
	if err != nil {
		return errors.Errorf("mappings: %w", err)
	}
	if err := text.NewSimpleTextReplacer().ValidateRules(text.RulesFromMap(tokens)); err != nil {
		return errors.Errorf("mappings: %w", err)
	}
	cfg.tokens = tokens

	cfg.exts = make(map[string]struct{}, len(cfg.TextExtensions))
	for i, ext := range cfg.TextExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.Errorf("text_extensions[%d]: %q must start with a dot", i, ext)
		}
		ext = strings.ToLower(ext)
		cfg.TextExtensions[i] = ext
		cfg.exts[ext] = struct{}{}
	}

	cfg.excluded = make(map[string]struct{}, len(cfg.ExcludedDirs))
	for i, dir := range cfg.ExcludedDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			return errors.Errorf("excluded_dirs[%d]: %q must be a single directory name", i, dir)
		}
		cfg.excluded[dir] = struct{}{}
	}

	for i, pattern := range cfg.ProtectedFiles {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("protected_files[%d]: invalid pattern %q", i, pattern)
		}
	}

	return nil
}

// Location is the file the configuration was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

// TokenMap returns the validated token map.
func (cfg *Config) TokenMap() *tokenmap.Map {
	return cfg.tokens
}

// IsTextFile reports whether a file's content may be rewritten, judged only
// by its extension.
func (cfg *Config) IsTextFile(name string) bool {
	_, ok := cfg.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsExcludedDir reports whether a directory name halts traversal.
func (cfg *Config) IsExcludedDir(name string) bool {
	_, ok := cfg.excluded[name]
	return ok
}

// IsProtected reports whether a root-relative path must never be rewritten.
func (cfg *Config) IsProtected(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range cfg.ProtectedFiles {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
