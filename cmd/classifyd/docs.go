package main

// General API documentation for swaggo. Run `swag init -g cmd/classifyd/docs.go` to regenerate docs/.
//
// @title           classifyd API
// @version         1.0
// @description     HTTP API for single-image classification.
//
// @contact.name   classifyd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
