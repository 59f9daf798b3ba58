// Package config provides configuration loading and validation for the InterviewIQ client.
// Values come from built-in defaults, then an optional YAML file, then INTERVIEWIQ_*
// environment variables (optionally loaded from a .env file).
package config
