package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
JWT authentication service

Usage:
  auth [--config-path <file>] [--help]

Options:
  --config-path   Path to the config yaml file (default: config.yaml)
  --help          Show this help message

Every setting can be provided through the environment, e.g.:
  AUTH_JWT_SECRET        HMAC-SHA256 signing secret, at least 16 bytes (required)
  AUTH_ENFORCE_EXPIRY    reject expired tokens (default: true)
  STORAGE_DRIVER         postgres | memory (default: postgres)
  HTTP_PORT              listen port (default: 3005)
  HTTP_CORS_ORIGINS      comma separated browser origins (default: http://localhost:3000)
  RABBITMQ_ENABLED       publish auth events (default: false)
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
