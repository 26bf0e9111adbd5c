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

// Package storage persists the set of already-posted content ids.
package storage

import (
	"net/url"

	"github.com/Imdavyking/econova/storage/postgres"
	"github.com/Imdavyking/econova/storage/sqlite3"
)

// Open opens a posted-tweet database. file: URIs select SQLite,
// postgres: URIs select Postgres.
func Open(dataSourceName string) (Database, error) {
	uri, err := url.Parse(dataSourceName)
	if err != nil {
		return postgres.NewPostedTweetsDatabase(dataSourceName)
	}
	switch uri.Scheme {
	case "file":
		return sqlite3.NewPostedTweetsDatabase(dataSourceName)
	case "postgres", "postgresql":
		return postgres.NewPostedTweetsDatabase(dataSourceName)
	default:
		return postgres.NewPostedTweetsDatabase(dataSourceName)
	}
}
