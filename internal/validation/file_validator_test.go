package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/shared/testutil"
)

var traceExtensions = []string{".csv", ".xlsx"}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		extensions    []string
		wantErr       bool
		errorContains string
	}{
		{
			name: "valid csv",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteTempFile(t, "trace.csv", []byte("a,b\n1,2\n"))
			},
			extensions: traceExtensions,
		},
		{
			name: "extension match is case insensitive",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteTempFile(t, "TRACE.CSV", []byte("a\n"))
			},
			extensions: traceExtensions,
		},
		{
			name: "no extension filter",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteTempFile(t, "trace.log", []byte("a\n"))
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			extensions:    traceExtensions,
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "export.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			extensions:    traceExtensions,
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteTempFile(t, "trace.pdf", []byte("%PDF"))
			},
			extensions:    traceExtensions,
			wantErr:       true,
			errorContains: `unsupported input extension ".pdf"`,
		},
		{
			name: "office lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteTempFile(t, "~$trace.xlsx", []byte("lock"))
			},
			extensions:    traceExtensions,
			wantErr:       true,
			errorContains: "lock file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputFile(tt.setupFunc(t), tt.extensions...)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
		})
	}
}

func TestFileValidator_ValidateInputFile_Logs(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	path := filepath.Join(t.TempDir(), "missing.csv")
	require.Error(t, v.ValidateInputFile(path))
	assert.True(t, handler.ContainsMessage("Input file does not exist"))
	assert.True(t, handler.ContainsAttr("file", path))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b", "out")
		require.NoError(t, v.ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := testutil.WriteTempFile(t, "out", []byte("x"))
		err := v.ValidateOutputDirectory(file)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("read only directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0555))
		t.Cleanup(func() { os.Chmod(dir, 0755) })

		err := v.ValidateOutputDirectory(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not writable")
	})
}

func TestNewFileValidator_NilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	assert.NotNil(t, v.logger)
}
