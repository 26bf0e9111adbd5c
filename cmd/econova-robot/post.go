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

package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Imdavyking/econova/internal"
	"github.com/Imdavyking/econova/storage"
	"github.com/Imdavyking/econova/twitterapi"
	"github.com/Imdavyking/econova/twitterapi/posting"
)

var (
	postText       string
	postMediaFiles []string
	postReplyTo    string
	postHideLink   bool
	postContentID  string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Log in and post a tweet, optionally with media attachments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var db storage.Database
		if postContentID != "" {
			db, err = storage.Open(string(cfg.Storage.PostedDatabase))
			if err != nil {
				return err
			}
			defer internal.CloseAndLogIfError(ctx, db, "Failed to close posted-tweet database")
			posted, err := db.IsTweetPosted(ctx, postContentID)
			if err != nil {
				return err
			}
			if posted {
				logrus.WithField("id", postContentID).Info("Content already posted, skipping")
				return nil
			}
		}

		client := twitterapi.NewClient(&cfg.Twitter)
		if err := client.Login(ctx); err != nil {
			return err
		}

		req := &posting.TweetRequest{
			Text:            postText,
			ReplyToTweetID:  postReplyTo,
			HideLinkPreview: postHideLink,
		}
		for _, path := range postMediaFiles {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			contentType := mime.TypeByExtension(filepath.Ext(path))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			mediaID, err := client.UploadMedia(ctx, data, contentType)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"file":     path,
				"media_id": mediaID,
			}).Info("Uploaded media")
			req.MediaIDs = append(req.MediaIDs, mediaID)
		}

		tweet, err := client.PostTweet(ctx, req)
		if err != nil {
			return err
		}
		if db != nil {
			if err := db.StorePostedTweet(ctx, postContentID, tweet.ID); err != nil {
				return err
			}
		}
		fmt.Println(tweet.ID)
		return nil
	},
}

func init() {
	postCmd.Flags().StringVarP(&postText, "text", "t", "", "Text of the tweet")
	postCmd.Flags().StringArrayVarP(&postMediaFiles, "media", "m", nil, "Media file to attach (repeatable)")
	postCmd.Flags().StringVar(&postReplyTo, "reply-to", "", "Tweet id to reply to")
	postCmd.Flags().BoolVar(&postHideLink, "hide-link-preview", false, "Suppress the link preview card")
	postCmd.Flags().StringVar(&postContentID, "id", "", "Content id used to skip items that were posted before")
	_ = postCmd.MarkFlagRequired("text")
}
