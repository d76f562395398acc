package render

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// OutputPath resolves where an artifact is written.
//
//   - hint == "": "<base>.<ext>" in the working directory
//   - hint names an existing directory, or ends in a path separator:
//     "<hint>/<base>.<ext>"
//   - hint without an extension: "<hint>.<ext>"
//   - otherwise hint is used as is
func OutputPath(hint, base string, format Format) string {
	name := base + "." + format.Ext()
	if hint == "" {
		return name
	}
	if strings.HasSuffix(hint, "/") || strings.HasSuffix(hint, string(filepath.Separator)) {
		return filepath.Join(hint, name)
	}
	if info, err := os.Stat(hint); err == nil && info.IsDir() {
		return filepath.Join(hint, name)
	}
	if filepath.Ext(hint) == "" {
		return hint + "." + format.Ext()
	}
	return hint
}

// CheckOutputExt rejects an output hint whose extension names a different
// known format, such as "diagram.svg" with format png. Directory hints and
// unknown extensions are accepted.
func CheckOutputExt(hint string, format Format) error {
	if hint == "" || strings.HasSuffix(hint, "/") || strings.HasSuffix(hint, string(filepath.Separator)) {
		return nil
	}
	ext := strings.TrimPrefix(filepath.Ext(hint), ".")
	if ext == "" {
		return nil
	}
	named, err := ParseFormat(ext)
	if err != nil || named == format {
		return nil
	}
	if info, err := os.Stat(hint); err == nil && info.IsDir() {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "output %s is a .%s file but the format is %s (pass --format %s or change the extension)", hint, ext, format, named)
}

// WriteFile atomically writes data to path.
//
// The bytes go to a hidden temporary file in the same directory, which is
// synced and renamed over path. On any failure the temporary file is removed
// and an IO_ERROR naming path is returned; path itself is never left partial.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioError(err, path)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return ioError(err, path)
	}
	if err = tmp.Sync(); err != nil {
		return ioError(err, path)
	}
	if err = tmp.Close(); err != nil {
		return ioError(err, path)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return ioError(err, path)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return ioError(err, path)
	}
	return nil
}

func ioError(err error, path string) error {
	switch {
	case stderrors.Is(err, os.ErrPermission):
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s: permission denied", path)
	case stderrors.Is(err, os.ErrNotExist):
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s: directory does not exist", path)
	default:
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s", path)
	}
}
