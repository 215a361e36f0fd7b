// Package config holds the process-wide settings for covid19-scraping.
//
// Settings come from built-in defaults, an optional YAML file, and COVID19_*
// environment variables, in that order of precedence (later wins). Once Load
// returns, the Config is treated as read-only.
//
// data_dir (COVID19_DATA_DIR) may start with "~/" to point below the user's
// home directory, e.g. "~/covid19/data". It is never created automatically.
package config
