package build

import (
	"context"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
)

// archiveExtensions are the distributable formats pip can install from.
var archiveExtensions = map[string]bool{
	"gz":  true,
	"zip": true, // wheels are zip archives
	"tar": true,
	"bz2": true,
	"xz":  true,
}

// PrepareStaging creates the staging directory. Idempotent.
func PrepareStaging(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating staging dir %s", dir)
	}
	return nil
}

// CopyDistFile copies the distributable at src into dstDir, preserving its
// permission bits and modification time. distFile may not escape dstDir.
func CopyDistFile(src, dstDir, distFile string) (string, error) {
	dst, err := securejoin.SecureJoin(dstDir, distFile)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s in %s", distFile, dstDir)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", errors.Wrap(err, "opening distributable")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", errors.Wrap(err, "stat distributable")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", errors.Wrapf(err, "copying to %s", dst)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return "", err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", err
	}
	return dst, nil
}

// IsArchive reports whether the file at path looks like an installable
// distributable archive.
func IsArchive(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, err
	}
	return archiveExtensions[kind.Extension], nil
}

// GatherDependencies downloads the project's dependencies into
// <staging>/dep so the final image can be built without index access.
// The package manager is checked lazily, only when gathering is enabled.
func GatherDependencies(ctx context.Context, r command.Runner, s config.PackageSettings) error {
	if err := command.CheckExecutable(ctx, r, s.PipExecutable, "gather_dep_locally"); err != nil {
		return err
	}

	staging := s.StagingDir()
	depDir := filepath.Join(staging, "dep")

	var args []string
	if s.RequirementsFile != "" {
		args = []string{"download", "--no-cache-dir", "--no-deps", "--destination-dir", depDir, "-r", s.RequirementsFile}
	} else {
		args = []string{"download", "--no-cache-dir", "--destination-dir", depDir, filepath.Join(staging, s.DistFile)}
	}

	_, err := r.Run(ctx, command.Command{
		Executable:     s.PipExecutable,
		Args:           args,
		LogName:        "pip_dep_gather",
		FailureMessage: "Error gathering dependencies",
		Dir:            s.Project.RootDir,
	})
	if err != nil {
		return errors.Wrap(err, "gathering dependencies")
	}
	return nil
}
