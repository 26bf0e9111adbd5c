// Copyright 2024 The econova Authors
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

package sqlite3

import (
	"context"
	"database/sql"
	"time"
)

const postedTweetsSchema = `
-- Content ids that have already been submitted, with the tweet id the
-- platform assigned and when we posted it.
CREATE TABLE IF NOT EXISTS posted_tweets (
	content_id TEXT NOT NULL PRIMARY KEY,
	tweet_id TEXT NOT NULL,
	posted_ts BIGINT NOT NULL
);
`

const insertPostedTweetSQL = "" +
	"INSERT INTO posted_tweets (content_id, tweet_id, posted_ts)" +
	" VALUES ($1, $2, $3)" +
	" ON CONFLICT (content_id) DO NOTHING"

const selectPostedTweetSQL = "" +
	"SELECT COUNT(1) FROM posted_tweets WHERE content_id = $1"

type postedTweetsStatements struct {
	insertPostedTweetStmt *sql.Stmt
	selectPostedTweetStmt *sql.Stmt
}

func (s *postedTweetsStatements) prepare(db *sql.DB) (err error) {
	if _, err = db.Exec(postedTweetsSchema); err != nil {
		return
	}
	if s.insertPostedTweetStmt, err = db.Prepare(insertPostedTweetSQL); err != nil {
		return
	}
	if s.selectPostedTweetStmt, err = db.Prepare(selectPostedTweetSQL); err != nil {
		return
	}
	return
}

func (s *postedTweetsStatements) insertPostedTweet(ctx context.Context, contentID, tweetID string) error {
	_, err := s.insertPostedTweetStmt.ExecContext(ctx, contentID, tweetID, time.Now().Unix())
	return err
}

func (s *postedTweetsStatements) selectPostedTweet(ctx context.Context, contentID string) (bool, error) {
	var count int64
	err := s.selectPostedTweetStmt.QueryRowContext(ctx, contentID).Scan(&count)
	return count > 0, err
}
