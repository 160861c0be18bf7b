// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package bitwarden

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apex/log"
	"github.com/cli/safeexec"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-version"

	"github.com/kigawa/kinfra/internal/cacheutil"
)

const (
	// DefaultBWSVersion is downloaded when bws is not on PATH.
	DefaultBWSVersion = "1.0.0"
	// ReleasesURL hosts the bws release archives.
	ReleasesURL = "https://github.com/bitwarden/sdk-sm/releases/download"
)

// Installer locates bws, downloading it into the kinfra cache when needed.
type Installer struct {
	Version string
	BaseURL string
	Client  *http.Client
	// Out receives progress messages. Nil discards them.
	Out io.Writer
	// LookPath finds bws on PATH. Defaults to safeexec.LookPath.
	LookPath func(string) (string, error)
}

// NewInstaller returns an Installer for the given bws version. An empty
// version means DefaultBWSVersion.
func NewInstaller(ver string, out io.Writer) *Installer {
	return &Installer{Version: ver, BaseURL: ReleasesURL, Out: out}
}

// Platform returns the bws release triple for goos/goarch.
func Platform(goos, goarch string) (string, error) {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return "x86_64-unknown-linux-gnu", nil
	case "linux/arm64":
		return "aarch64-unknown-linux-gnu", nil
	case "darwin/amd64":
		return "x86_64-apple-darwin", nil
	case "darwin/arm64":
		return "aarch64-apple-darwin", nil
	case "windows/amd64":
		return "x86_64-pc-windows-msvc", nil
	}
	return "", fmt.Errorf("unsupported platform: %s/%s", goos, goarch)
}

// DownloadURL returns the archive URL of ver for platform.
func (i *Installer) DownloadURL(ver string, platform string) string {
	base := strings.TrimSuffix(i.BaseURL, "/")
	if base == "" {
		base = ReleasesURL
	}
	return fmt.Sprintf("%s/bws-v%s/bws-%s-%s.zip", base, ver, platform, ver)
}

// Ensure returns the path of a usable bws executable.
func (i *Installer) Ensure(ctx context.Context) (string, error) {
	lookPath := i.LookPath
	if lookPath == nil {
		lookPath = safeexec.LookPath
	}
	if p, err := lookPath("bws"); err == nil {
		log.Debugf("bws found on PATH: %s", p)
		return p, nil
	}

	ver, err := i.version()
	if err != nil {
		return "", err
	}

	tool := cacheutil.Tool{Name: binaryName()}
	target, ok, err := tool.Path()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: bws is not on PATH and the kinfra cache is disabled", ErrNotInstalled)
	}
	if p, ok := tool.Installed(ver.String()); ok {
		log.Debugf("bws found in cache: %s", p)
		return p, nil
	}

	platform, err := Platform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}
	if err := i.download(ctx, i.DownloadURL(ver.String(), platform), target); err != nil {
		return "", fmt.Errorf("failed to install bws: %w", err)
	}
	if err := tool.Record(ver.String()); err != nil {
		log.WithError(err).Warn("failed to record bws version")
	}
	return target, nil
}

func (i *Installer) version() (*version.Version, error) {
	raw := strings.TrimPrefix(i.Version, "v")
	if raw == "" {
		raw = DefaultBWSVersion
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid bws version %q: %w", i.Version, err)
	}
	return v, nil
}

func (i *Installer) download(ctx context.Context, url string, target string) error {
	i.printf("bws CLI not found. Downloading %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := i.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	archive := target + ".zip"
	f, err := os.OpenFile(archive, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:mnd
	if err != nil {
		return err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(archive)
	}()

	if err := extractFromZip(archive, binaryName(), target); err != nil {
		return err
	}
	i.printf("✓ bws installed to %s (%s archive)\n", target, humanize.Bytes(uint64(n)))
	log.WithField("size", n).Infof("bws installed to %s", target)
	return nil
}

func (i *Installer) printf(format string, a ...any) {
	if i.Out != nil {
		fmt.Fprintf(i.Out, format, a...)
	}
}

func extractFromZip(archivePath, fileName, targetPath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = reader.Close()
	}()

	for _, f := range reader.File {
		if filepath.Base(f.Name) != fileName {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer func() {
			_ = src.Close()
		}()

		tmp := targetPath + ".tmp"
		dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755) //nolint:mnd
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, src); err != nil {
			_ = dst.Close()
			return err
		}
		if err := dst.Close(); err != nil {
			return err
		}
		if err := os.Chmod(tmp, 0o755); err != nil { //nolint:mnd
			return err
		}
		return os.Rename(tmp, targetPath)
	}
	return fmt.Errorf("file %s not found in archive", fileName)
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "bws.exe"
	}
	return "bws"
}
