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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL. Expressions may call env("NAME") to
// read environment variables, which keeps database passwords out of the file.
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: hclFunctions(),
	}

	// Define HCL schema
	type hclConfig struct {
		Title       string   `hcl:"title,optional"`
		SourceRoot  string   `hcl:"source_root"`
		DestRoot    string   `hcl:"dest_root"`
		Ledger      string   `hcl:"ledger,optional"`
		AuditLog    string   `hcl:"audit_log,optional"`
		IgnoreLots  []string `hcl:"ignore_lots,optional"`
		CopyWorkers int      `hcl:"copy_workers,optional"`
		Store       *struct {
			Driver     string `hcl:"driver"`
			DSN        string `hcl:"dsn"`
			Schema     string `hcl:"schema,optional"`
			SystemName string `hcl:"system_name,optional"`
			SystemType string `hcl:"system_type,optional"`
		} `hcl:"store,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Title:       hclCfg.Title,
		SourceRoot:  hclCfg.SourceRoot,
		DestRoot:    hclCfg.DestRoot,
		Ledger:      hclCfg.Ledger,
		AuditLog:    hclCfg.AuditLog,
		IgnoreLots:  hclCfg.IgnoreLots,
		CopyWorkers: hclCfg.CopyWorkers,
	}
	if hclCfg.Store != nil {
		cfg.Store = &StoreConfig{
			Driver:     hclCfg.Store.Driver,
			DSN:        hclCfg.Store.DSN,
			Schema:     hclCfg.Store.Schema,
			SystemName: hclCfg.Store.SystemName,
			SystemType: hclCfg.Store.SystemType,
		}
	}

	return cfg, nil
}

// hclFunctions are the functions available to config expressions
func hclFunctions() map[string]function.Function {
	return map[string]function.Function{
		"env": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "name", Type: cty.String}},
			Type:   function.StaticReturnType(cty.String),
			Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
				return cty.StringVal(os.Getenv(args[0].AsString())), nil
			},
		}),
	}
}
