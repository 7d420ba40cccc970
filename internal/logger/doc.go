// Package logger wraps zap with a global sugared logger and context helpers.
//
// Services receive a context and log through it, so names and key-value
// pairs attached upstream (WithName, WithKV) follow every message.
package logger
