package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/catalog/earthapi"
	"github.com/greenwatch/ndvi-broker/catalog/localindex"
	"github.com/greenwatch/ndvi-broker/export"
	"github.com/greenwatch/ndvi-broker/pipeline"
	"github.com/greenwatch/ndvi-broker/util"
)

//runAction executes one full pipeline run from a config file
func runAction(c *cli.Context) {
	logContext := &(util.BasicLogContext{})

	//Local .env files carry provider credentials during development
	godotenv.Load()

	config, err := pipeline.LoadConfig(c.String("config"))
	if err != nil {
		log.Fatal("Could not load run configuration: ", err)
	}

	sceneCatalog, err := createCatalog(config)
	if err != nil {
		log.Fatal("Could not create the scene catalog: ", err)
	}

	exporter := &export.Exporter{OutputDir: config.OutputDir, LogContext: logContext}
	if config.Upload {
		storeConfig, ok := util.GetObjectStoreConfig()
		if !ok {
			log.Fatal("Upload requested but no object store is configured.")
		}
		if exporter.Uploader, err = export.NewS3Uploader(storeConfig); err != nil {
			log.Fatal("Could not connect to the object store: ", err)
		}
	}

	run := &pipeline.Pipeline{
		Config:     config,
		Catalog:    sceneCatalog,
		Exporter:   exporter,
		LogContext: logContext,
	}

	summary, err := run.Run(context.Background())
	if err != nil {
		log.Fatal("Pipeline run failed: ", err)
	}
	fmt.Print(summary.String())
}

func createCatalog(config *pipeline.Config) (catalog.Catalog, error) {
	switch config.Provider {
	case "localindex":
		return localindex.NewLocalIndex(getDbConnectionFunc)
	default:
		return earthapi.NewClient(), nil
	}
}
