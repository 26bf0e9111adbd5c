package postgres

import (
	"context"
	"database/sql"

	// Import the postgres database driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Database tracks posted content ids in Postgres.
type Database struct {
	db *sql.DB
	postedTweetsStatements
}

// NewPostedTweetsDatabase opens a connection with the given postgres
// connection string and prepares its statements.
func NewPostedTweetsDatabase(dataSourceName string) (*Database, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres posted tweets database")
	}
	d := &Database{db: db}
	if err = d.prepare(db); err != nil {
		return nil, errors.Wrap(err, "preparing posted tweets statements")
	}
	return d, nil
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
