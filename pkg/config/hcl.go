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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/tokenmap"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
//
//	mapping {
//	  legacy    = "prompt-factory"
//	  canonical = "AetherCore.PromptFoundry"
//	}
//	excluded_dirs = [".git", "vendor"]
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	type hclConfig struct {
		Mappings []struct {
			Legacy    string `hcl:"legacy"`
			Canonical string `hcl:"canonical"`
		} `hcl:"mapping,block"`
		TextExtensions []string `hcl:"text_extensions,optional"`
		ExcludedDirs   []string `hcl:"excluded_dirs,optional"`
		ProtectedFiles []string `hcl:"protected_files,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		TextExtensions: hclCfg.TextExtensions,
		ExcludedDirs:   hclCfg.ExcludedDirs,
		ProtectedFiles: hclCfg.ProtectedFiles,
	}
	for _, m := range hclCfg.Mappings {
		cfg.Mappings = append(cfg.Mappings, tokenmap.Mapping{
			Legacy:    m.Legacy,
			Canonical: m.Canonical,
		})
	}

	return cfg, nil
}
