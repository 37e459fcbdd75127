package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           korrektor API
// @version         1.0
// @description     HTTP API for German grammar and spelling correction on local causal LMs.
//
// @contact.name   korrektor maintainers
// @contact.url    https://github.com/your-org/korrektor
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
