package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Imdavyking/econova/storage"
)

func TestSQLitePostedTweets(t *testing.T) {
	db, err := storage.Open("file:" + filepath.Join(t.TempDir(), "posted.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	posted, err := db.IsTweetPosted(ctx, "article-1")
	require.NoError(t, err)
	assert.False(t, posted)

	require.NoError(t, db.StorePostedTweet(ctx, "article-1", "42"))
	posted, err = db.IsTweetPosted(ctx, "article-1")
	require.NoError(t, err)
	assert.True(t, posted)

	// Recording the same id again must not error.
	require.NoError(t, db.StorePostedTweet(ctx, "article-1", "43"))
	posted, err = db.IsTweetPosted(ctx, "article-1")
	require.NoError(t, err)
	assert.True(t, posted)
}
