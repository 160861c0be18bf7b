// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	// FileName is the backend config file consumed by -backend-config.
	FileName = "backend.tfvars"
	// Region is the only region R2 understands.
	Region = "auto"
	// DefaultBucket is used when no bucket name is configured.
	DefaultBucket = "kigawa-infra-state"
)

// Placeholders are markers left in template backend files. A file containing
// any of them is treated as absent.
var Placeholders = []string{"<account-id>", "your-r2-"}

// ErrPlaceholder is returned by Load for a file that still holds template
// markers.
var ErrPlaceholder = errors.New("backend file contains placeholder values")

// R2Config is the remote state location and credentials for an R2 bucket.
type R2Config struct {
	Bucket    string
	Key       string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewR2Config builds an R2Config for the given Cloudflare account. An empty
// bucket falls back to DefaultBucket.
func NewR2Config(accountID, bucket, key, accessKey, secretKey string) R2Config {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return R2Config{
		Bucket:    bucket,
		Key:       key,
		Endpoint:  Endpoint(accountID),
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Endpoint returns the S3 API endpoint of an R2 account.
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// StateKey returns the state object key for an environment. An empty
// environment means the repository-wide state.
func StateKey(env string) string {
	if env == "" {
		return "terraform.tfstate"
	}
	return env + "/terraform.tfstate"
}

// Render returns c in tfvars syntax:
//
//	bucket     = "..."
//	key        = "..."
//	region     = "auto"
//	endpoints = {
//	  s3 = "https://<account>.r2.cloudflarestorage.com"
//	}
//	access_key = "..."
//	secret_key = "..."
func (c R2Config) Render() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("bucket", cty.StringVal(c.Bucket))
	body.SetAttributeValue("key", cty.StringVal(c.Key))
	body.SetAttributeValue("region", cty.StringVal(Region))
	body.SetAttributeValue("endpoints", cty.ObjectVal(map[string]cty.Value{
		"s3": cty.StringVal(c.Endpoint),
	}))
	body.SetAttributeValue("access_key", cty.StringVal(c.AccessKey))
	body.SetAttributeValue("secret_key", cty.StringVal(c.SecretKey))
	return hclwrite.Format(f.Bytes())
}

// Masked returns a copy of c safe to print.
func (c R2Config) Masked() R2Config {
	c.AccessKey = Mask(c.AccessKey)
	c.SecretKey = Mask(c.SecretKey)
	return c
}

// Mask hides all but the first four characters of a secret.
func Mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8)
}

// HasPlaceholder reports whether content holds a template marker.
func HasPlaceholder(content string) bool {
	for _, p := range Placeholders {
		if strings.Contains(content, p) {
			return true
		}
	}
	return false
}

// IsUsable reports whether path exists and holds no placeholder markers. It
// is checked on every call, never cached.
func IsUsable(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return !HasPlaceholder(string(b))
}

// Write stores c at path with owner-only permissions, creating parent
// directories as needed.
func Write(path string, c R2Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, c.Render(), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write backend config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to restrict backend config: %w", err)
	}
	log.WithField("bucket", c.Bucket).Infof("backend config written: %s", path)
	return nil
}

// Load parses a backend file. Both the endpoints = { s3 = ... } form and the
// older flat endpoint attribute are understood.
func Load(path string) (R2Config, error) {
	var c R2Config

	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if HasPlaceholder(string(raw)) {
		return c, ErrPlaceholder
	}

	f, diags := hclparse.NewParser().ParseHCL(raw, path)
	if diags.HasErrors() {
		return c, fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	attrs, diags := f.Body.JustAttributes()
	if diags.HasErrors() {
		return c, fmt.Errorf("failed to read %s: %w", path, diags)
	}

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return c, fmt.Errorf("failed to evaluate %s in %s: %w", name, path, diags)
		}

		switch name {
		case "bucket":
			c.Bucket = stringOf(val)
		case "key":
			c.Key = stringOf(val)
		case "endpoint":
			c.Endpoint = stringOf(val)
		case "endpoints":
			if val.Type().IsObjectType() && val.Type().HasAttribute("s3") {
				c.Endpoint = stringOf(val.GetAttr("s3"))
			}
		case "access_key":
			c.AccessKey = stringOf(val)
		case "secret_key":
			c.SecretKey = stringOf(val)
		}
	}

	return c, nil
}

func stringOf(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}
