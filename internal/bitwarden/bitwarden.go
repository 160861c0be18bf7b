// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package bitwarden reads R2 credentials from Bitwarden, either through the
// password manager CLI (bw) with an unlocked session or through the Secrets
// Manager CLI (bws) with an access token.
package bitwarden

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultItem is the password manager item holding the R2 fields.
const DefaultItem = "Cloudflare R2 Terraform Backend"

var (
	ErrNotInstalled  = errors.New("bitwarden CLI is not installed")
	ErrNotLoggedIn   = errors.New("not logged in to bitwarden")
	ErrUnlockFailed  = errors.New("failed to unlock bitwarden vault")
	ErrNotFound      = errors.New("not found")
	ErrMissingSecret = errors.New("required secret missing")
)

// Field types as reported by bw.
const (
	FieldText   = 0
	FieldHidden = 1
)

// Field is one custom field of an Item.
type Field struct {
	Name  string
	Value string
	Type  int
}

// Hidden reports whether the field should be masked when shown.
func (f Field) Hidden() bool { return f.Type == FieldHidden }

// Item is a password manager vault item.
type Item struct {
	ID     string
	Name   string
	Fields []Field
}

// FieldValue returns the value of the first field named name.
func (i Item) FieldValue(name string) (string, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Secret is a Secrets Manager secret.
type Secret struct {
	ID             string
	OrganizationID string
	ProjectID      string
	Key            string
	Value          string
	Note           string
	CreationDate   string
	RevisionDate   string
}

// R2Credentials is what kinfra needs from Bitwarden to write a backend file.
type R2Credentials struct {
	AccessKey string
	SecretKey string
	AccountID string
	// Bucket is empty when none is stored.
	Bucket string
}

// Secret key aliases, in lookup order.
var (
	AccessKeyNames = []string{"r2-access", "r2_access_key", "access_key"}
	SecretKeyNames = []string{"r2-secret", "r2_secret_key", "secret_key"}
	AccountNames   = []string{"r2-account", "r2_account_id", "account_id"}
	BucketNames    = []string{"r2-bucket", "r2_bucket_name", "bucket_name"}
)

// CredentialsFromItem pulls the R2 fields out of a vault item. Missing
// fields are reported by their item field names.
func CredentialsFromItem(item Item) (R2Credentials, error) {
	lookup := func(names []string) string {
		for _, n := range names {
			if v, ok := item.FieldValue(n); ok && v != "" {
				return v
			}
		}
		return ""
	}
	itemName := func(names []string) string { return names[len(names)-1] }

	c, missing := credentialsFrom(lookup, itemName)
	if len(missing) > 0 {
		available := make([]string, 0, len(item.Fields))
		for _, f := range item.Fields {
			available = append(available, f.Name)
		}
		return c, &MissingError{Keys: missing, Available: available}
	}
	return c, nil
}

// CredentialsFromSecrets pulls the R2 values out of a secret list.
func CredentialsFromSecrets(secrets []Secret) (R2Credentials, error) {
	lookup := func(names []string) string {
		for _, n := range names {
			for _, s := range secrets {
				if s.Key == n && s.Value != "" {
					return s.Value
				}
			}
		}
		return ""
	}
	secretName := func(names []string) string { return names[0] }

	c, missing := credentialsFrom(lookup, secretName)
	if len(missing) > 0 {
		available := make([]string, 0, len(secrets))
		for _, s := range secrets {
			available = append(available, s.Key)
		}
		return c, &MissingError{Keys: missing, Available: available}
	}
	return c, nil
}

func credentialsFrom(lookup, name func([]string) string) (R2Credentials, []string) {
	c := R2Credentials{
		AccessKey: lookup(AccessKeyNames),
		SecretKey: lookup(SecretKeyNames),
		AccountID: lookup(AccountNames),
		Bucket:    lookup(BucketNames),
	}

	var missing []string
	if c.AccessKey == "" {
		missing = append(missing, name(AccessKeyNames))
	}
	if c.SecretKey == "" {
		missing = append(missing, name(SecretKeyNames))
	}
	if c.AccountID == "" {
		missing = append(missing, name(AccountNames))
	}
	return c, missing
}

// MissingError lists the credential keys that could not be found.
type MissingError struct {
	Keys []string
	// Available holds the field names or secret keys that were present.
	Available []string
}

func (e *MissingError) Error() string {
	return "required secret missing: " + strings.Join(e.Keys, ", ")
}

func (e *MissingError) Unwrap() error { return ErrMissingSecret }

func parseItem(r gjson.Result) Item {
	item := Item{
		ID:   r.Get("id").String(),
		Name: r.Get("name").String(),
	}
	r.Get("fields").ForEach(func(_, f gjson.Result) bool {
		item.Fields = append(item.Fields, Field{
			Name:  f.Get("name").String(),
			Value: f.Get("value").String(),
			Type:  int(f.Get("type").Int()),
		})
		return true
	})
	return item
}

func parseSecret(r gjson.Result) Secret {
	return Secret{
		ID:             r.Get("id").String(),
		OrganizationID: r.Get("organizationId").String(),
		ProjectID:      r.Get("projectId").String(),
		Key:            r.Get("key").String(),
		Value:          r.Get("value").String(),
		Note:           r.Get("note").String(),
		CreationDate:   r.Get("creationDate").String(),
		RevisionDate:   r.Get("revisionDate").String(),
	}
}
