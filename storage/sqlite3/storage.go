package sqlite3

import (
	"context"
	"database/sql"
	"net/url"

	// Import the sqlite3 database driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Database tracks posted content ids in SQLite.
type Database struct {
	db *sql.DB
	postedTweetsStatements
}

// NewPostedTweetsDatabase opens the database at the given file: URI
// and prepares its statements.
func NewPostedTweetsDatabase(dataSourceName string) (*Database, error) {
	path, err := parseFileURI(dataSourceName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite posted tweets database")
	}
	d := &Database{db: db}
	if err = d.prepare(db); err != nil {
		return nil, errors.Wrap(err, "preparing posted tweets statements")
	}
	return d, nil
}

// parseFileURI handles both relative (file:foo.db) and absolute
// (file:///path/to/foo.db) forms.
func parseFileURI(dataSourceName string) (string, error) {
	uri, err := url.Parse(dataSourceName)
	if err != nil {
		return "", err
	}
	if uri.Opaque != "" {
		return uri.Opaque, nil
	}
	if uri.Path != "" {
		return uri.Path, nil
	}
	return "", errors.Errorf("invalid file uri: %s", dataSourceName)
}

func (d *Database) StorePostedTweet(ctx context.Context, id, tweetID string) error {
	return d.insertPostedTweet(ctx, id, tweetID)
}

func (d *Database) IsTweetPosted(ctx context.Context, id string) (bool, error) {
	return d.selectPostedTweet(ctx, id)
}

func (d *Database) Close() error {
	return d.db.Close()
}
