// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var commands = cli.Commands{
	cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the NDVI pipeline for the configured region and periods",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config, c",
				Value: "run.yaml",
				Usage: "Path to the run configuration file",
			},
		},
		Action: runAction,
	},
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the ndvi-broker webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Update the scene index from the configured scene list",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single ingest job and exit",
			},
		},
		Action: ingestAction,
	},
	cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Update database schema",
		Action:  migrateDatabaseAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the Broker CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "ndvi-broker"
	app.Usage = "Launch an ndvi-broker process"
	app.Commands = commands
	return
}
