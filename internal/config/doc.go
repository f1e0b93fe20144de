// Package config provides configuration parsing for fsroutes projects.
//
// The configuration is stored in fsroutes.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "routes": {
//	    "pathPrefix": "^/src/views",
//	    "indexFileName": "/page.tsx",
//	    "routerPathFolder": "/src/views",
//	    "rawPathKey": "_rawPath"
//	  },
//	  "source": {
//	    "kind": "dir",
//	    "dir": "."
//	  },
//	  "output": {
//	    "file": "src/routes.gen.ts",
//	    "format": "ts",
//	    "relativeChildren": true
//	  },
//	  "hooks": {
//	    "lua": "./routes.lua"
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 3100,
//	    "interval": "300ms"
//	  }
//	}
//
// A bucket can stand in for the local tree:
//
//	"source": {
//	  "kind": "s3",
//	  "bucket": "my-app-src",
//	  "prefix": "src/views/",
//	  "region": "eu-west-1"
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    return err
//	}
//
//	opts, err := cfg.RouterOptions()
package config
