// Package config loads the membersearch binary configuration from MEMBERSEARCH_* environment
// variables and opens the store connections it describes.
package config
