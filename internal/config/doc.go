// Package config loads, parses, and validates application settings from a
// .env file, an optional config.yaml, and MAGICPHOTO_-prefixed environment
// variables.
package config
