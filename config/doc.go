// Package config loads quaero settings from a YAML file with environment
// overrides.
//
// Lookup order: defaults, then the file (a missing file is fine), then
// QUAERO_* variables. The CLI loads a .env file into the environment before
// calling Load.
//
//	data_dir: ./data
//	embedding:
//	  provider: ollama
//	  accelerated_host: http://gpu-box:11434
//	  fallback_host: http://localhost:11434
//	  model: bge-m3
//	store:
//	  kind: qdrant
//	  qdrant:
//	    url: http://localhost:6333
package config
