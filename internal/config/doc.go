// Package config loads llmwire settings.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. the TOML config file (--config)
//  3. a .env file in the working directory
//  4. the process environment
//  5. command line flags
//
// Environment variables use the LLMWIRE_ prefix with the first underscore
// separating section and key, e.g. LLMWIRE_MODELS_ANTHROPIC or
// LLMWIRE_IMAGES_DIR. The conventional OPENAI_API_KEY and ANTHROPIC_API_KEY
// are honored as well, both in the environment and in .env.
//
// API keys missing from every layer are looked up in the OS keyring when
// auth.storage is "keyring".
package config
