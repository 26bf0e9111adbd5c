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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Imdavyking/econova/twitterapi"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the configured credentials by running the login flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := twitterapi.NewClient(&cfg.Twitter)
		if err := client.Login(cmd.Context()); err != nil {
			return err
		}
		logrus.WithField("username", cfg.Twitter.Credentials.Username).Info("Login succeeded")
		fmt.Println("login ok")
		return nil
	},
}
