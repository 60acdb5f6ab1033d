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

package migrate

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 FileManager is every filesystem call the migration makes
type FileManager interface {
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
	Lstat(ctx context.Context, path string) (fs.FileInfo, error)
	Rename(ctx context.Context, oldPath, newPath string) error
}

// tempPattern names temp files; it holds no legacy identifier, so pass 2
// cannot pick one up as a rename candidate.
const tempPattern = ".aethermig-*.tmp"

// 🔧 OSFileManager implements FileManager on the local disk
type OSFileManager struct{}

var _ FileManager = OSFileManager{}

func (OSFileManager) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (OSFileManager) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// WriteFileAtomic replaces a file's content through a uniquely named sibling
// temp file, keeping the permission bits of the file it replaces. The temp
// file never survives a failed write.
func (OSFileManager) WriteFileAtomic(ctx context.Context, path string, content []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stating file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tempPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			zerolog.Ctx(ctx).Debug().Err(rmErr).Str("path", tempPath).Msg("removing temp file")
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tempPath, info.Mode().Perm()); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func (OSFileManager) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFileManager) Lstat(ctx context.Context, path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func (OSFileManager) Rename(ctx context.Context, oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}
