package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/envit5d/docs.go`.
//
// @title           envit5d API
// @version         1.0
// @description     HTTP API for English-Vietnamese translation backed by the VietAI envit5-translation ONNX export.
//
// @contact.name   envit5d maintainers
// @contact.url    https://github.com/your-org/envit5d
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
