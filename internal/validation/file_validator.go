package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "opsanalytics/internal/errors"
	"opsanalytics/internal/files"
	"opsanalytics/internal/infrastructure"
)

// FileValidator checks input tables and output directories before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateInputFile checks that path is a non-empty, readable CSV or
// Excel table.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("input_file_missing", slog.String("file", path))
		return apperrors.NewNotFoundError("input file").WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("excel_lock_file_skipped", slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel file", path))
	}
	if !files.IsInputFile(base) {
		ext := strings.ToLower(filepath.Ext(path))
		return apperrors.NewAppValidationError(fmt.Sprintf("unsupported input format %q, want one of %s",
			ext, strings.Join(files.InputExtensions, ", ")))
	}
	if info.Size() == 0 {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is empty", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("%s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("input_file_validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("input_directory_missing", slog.String("directory", dir))
		return apperrors.NewNotFoundError("input directory").WithContext("path", dir)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", dir))
	}
	return nil
}

// ValidateOutputDirectory ensures the output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("output_directory_create_failed",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("output_directory_not_writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return nil
}
