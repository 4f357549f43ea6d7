// Copyright 2025 Minija Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"

	"github.com/minija-farm/minija/internal/engine/bootstrap"
	"github.com/minija-farm/minija/internal/engine/config"
	"github.com/minija-farm/minija/pkg/log"
	"github.com/minija-farm/minija/pkg/version"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
}

func main() {
	flag.Parse()
	fmt.Printf("minija %s (%s)\n", version.Version, version.GitCommit)

	appConf := config.NewConf(configFile)
	log.MustInit(&appConf.Log)

	app, cleanup, err := bootstrap.NewApp(appConf)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	bootstrap.Run(app, cleanup)
}
