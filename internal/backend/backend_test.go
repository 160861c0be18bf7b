// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewR2Config(t *testing.T) {
	c := NewR2Config("abc123", "", "prod/terraform.tfstate", "ak", "sk")
	assert.Equal(t, DefaultBucket, c.Bucket)
	assert.Equal(t, "https://abc123.r2.cloudflarestorage.com", c.Endpoint)
	assert.Equal(t, "prod/terraform.tfstate", c.Key)

	c = NewR2Config("abc123", "team", "k", "ak", "sk")
	assert.Equal(t, "team", c.Bucket)
}

func TestStateKey(t *testing.T) {
	assert.Equal(t, "terraform.tfstate", StateKey(""))
	assert.Equal(t, "prod/terraform.tfstate", StateKey("prod"))
}

func TestRender(t *testing.T) {
	out := string(NewR2Config("acct", "b", "k", "AKID", "SECRET").Render())

	assert.Regexp(t, `bucket\s+= "b"`, out)
	assert.Regexp(t, `region\s+= "auto"`, out)
	assert.Regexp(t, `s3\s*= "https://acct.r2.cloudflarestorage.com"`, out)
	assert.Regexp(t, `access_key\s+= "AKID"`, out)
	assert.Regexp(t, `secret_key\s+= "SECRET"`, out)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := NewR2Config("acct", "bucket", "prod/terraform.tfstate", "AKID", "SECRET")

	require.NoError(t, Write(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, IsUsable(path))
}

func TestLoad_LegacyEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `bucket     = "b"
key        = "terraform.tfstate"
region     = "auto"
endpoint   = "https://acct.r2.cloudflarestorage.com"
access_key = "a"
secret_key = "s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", got.Endpoint)
	assert.Equal(t, "b", got.Bucket)
}

func TestIsUsable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
		want    bool
	}{
		{"missing", nil, false},
		{"account placeholder", ptr(`endpoint = "https://<account-id>.r2.cloudflarestorage.com"`), false},
		{"key placeholder", ptr(`access_key = "your-r2-access-key"`), false},
		{"real", ptr(`bucket = "b"`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".tfvars")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}
			assert.Equal(t, tt.want, IsUsable(path))
		})
	}
}

func TestLoad_Placeholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`access_key = "your-r2-access-key"`), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrPlaceholder)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "abcd********", Mask("abcdefghij"))

	m := R2Config{AccessKey: "AKIDAKID", SecretKey: "SECRETSECRET"}.Masked()
	assert.Equal(t, "AKID********", m.AccessKey)
	assert.Equal(t, "SECR********", m.SecretKey)
}

func ptr(s string) *string { return &s }
