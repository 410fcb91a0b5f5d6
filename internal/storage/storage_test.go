package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir, "/uploads/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "menus", "Nasi Goreng.PNG", strings.NewReader("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/menus/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	file := filepath.Join(dir, "menus", filepath.Base(url))
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op
	assert.NoError(t, s.Delete(ctx, url))
}

func TestLocalDeleteIgnoresDefaults(t *testing.T) {
	s := NewLocal(t.TempDir(), "/uploads")
	assert.NoError(t, s.Delete(context.Background(), "/static/default-menu.png"))
	assert.NoError(t, s.Delete(context.Background(), "/uploads/../etc/passwd"))
}
