package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	return &Cache{cacheDir: dir, ttl: ttl}, dir
}

func TestNewCache(t *testing.T) {
	// Arrange
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	// Act
	c, err := NewCache(dir, time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())
	assert.DirExists(t, dir)
}

func TestCache_GenerateHash(t *testing.T) {
	c := &Cache{}

	hash1 := c.GenerateHash("file:///repo", "My Issues")
	hash2 := c.GenerateHash("file:///repo", "My Issues")
	hash3 := c.GenerateHash("file:///repoMy", " Issues")

	assert.Equal(t, hash1, hash2)
	assert.NotEqual(t, hash1, hash3)
	assert.Len(t, hash1, 64)
}

func TestCache_SetAndGet(t *testing.T) {
	// Arrange
	c, _ := setupTestCache(t, time.Hour)
	type testData struct {
		Name string `json:"name"`
	}
	data := testData{Name: "issuels"}
	hash := c.GenerateHash("issuels-key")

	// Act
	require.NoError(t, c.Set(hash, data))
	resp, found, err := c.Get(hash)

	// Assert
	require.NoError(t, err)
	require.True(t, found)
	var got testData
	require.NoError(t, json.Unmarshal(resp, &got))
	assert.Equal(t, data, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	c, _ := setupTestCache(t, time.Hour)

	_, found, err := c.Get("non-existent-hash")

	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Get_Corrupt(t *testing.T) {
	c, dir := setupTestCache(t, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644))

	_, found, err := c.Get("bad")

	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_Get_Expired(t *testing.T) {
	// Arrange
	c, dir := setupTestCache(t, 10*time.Millisecond)
	hash := "expired-hash"
	require.NoError(t, c.Set(hash, "some data"))
	time.Sleep(20 * time.Millisecond)

	// Act
	_, found, err := c.Get(hash)

	// Assert
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoFileExists(t, filepath.Join(dir, hash+".json"))
}

func TestCache_Delete(t *testing.T) {
	c, dir := setupTestCache(t, time.Hour)
	require.NoError(t, c.Set("gone", 1))

	require.NoError(t, c.Delete("gone"))
	require.NoError(t, c.Delete("gone"))

	assert.NoFileExists(t, filepath.Join(dir, "gone.json"))
}

func TestCache_CleanExpired(t *testing.T) {
	// Arrange
	c, dir := setupTestCache(t, time.Hour)
	require.NoError(t, c.Set("fresh", "data"))
	require.NoError(t, c.Set("old", "data"))
	oldFilePath := filepath.Join(dir, "old.json")
	oldTime := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldFilePath, oldTime, oldTime))

	// Act
	err := c.CleanExpired()

	// Assert
	require.NoError(t, err)
	assert.NoFileExists(t, oldFilePath)
	assert.FileExists(t, filepath.Join(dir, "fresh.json"))
}

func TestCache_Clean(t *testing.T) {
	c, dir := setupTestCache(t, time.Hour)
	require.NoError(t, c.Set("hash1", "data"))

	require.NoError(t, c.Clean())

	assert.NoDirExists(t, dir)
}
