// Package config loads runtime settings for the report search server.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file: $REPORTSEARCH_CONFIG, or ~/.reportsearch/config.toml if present
//  3. Environment overrides: REPORTSEARCH_DB_PATH, REPORTSEARCH_WORKERS
//
// Example config.toml:
//
//	db_path = "~/.reportsearch/reports.db"
//	workers = 4
//
//	[search]
//	dedup_distance = 50
//	min_flexible_confidence = 0.6
//	cache_size = 1000
//
//	[search.chunker]
//	min_words = 5
//	max_words = 10
//
//	[session]
//	fetch_concurrency = 8
package config
