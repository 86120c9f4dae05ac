// Package config loads mfext project configuration.
//
// Configuration lives in mfext.json at the project root. Every value has a
// default, so the file is optional, and every key can be overridden from the
// environment with the MFEXT_ prefix (dots become underscores):
//
//	MFEXT_SERVER_SSRPORT=8080 mfext start
//
// # Configuration File Structure
//
//	{
//	  "paths": {
//	    "app": "app",
//	    "public": "public",
//	    "serverMain": "./cmd/server",
//	    "clientMain": "./cmd/client"
//	  },
//	  "build": {
//	    "output": "dist"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "ssrPort": 5000,
//	    "rscPort": 5001,
//	    "rscUrl": "http://localhost:5001"
//	  },
//	  "publish": {
//	    "bucket": "my-assets",
//	    "prefix": "static/"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Manifest:", cfg.ManifestPath())
package config
