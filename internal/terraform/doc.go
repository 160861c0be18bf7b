// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package terraform resolves the on-disk layout of an environment and turns
// verbs into terraform invocations. Every child gets SSH_CONFIG pointing at
// the project's ssh config so SSH based provisioners behave the same no
// matter where kinfra was started.
package terraform
