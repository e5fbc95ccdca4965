// Command salesassistant runs the sales assistant API.
package main

import "os"

// @title                       Sales Assistant API
// @version                     1.0
// @description                 Customer records, authentication and chatbot for the sales assistant.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
