// Tag is the command-line front end of the tag scripting language.
//
// It parses tag programs, checks files for syntax errors, inspects the
// grammar, manages the snippet library and serves all of it over HTTP.
//
// Usage:
//
//	# Parse a program and print its AST
//	tag parse greet.tag
//	tag parse -e 'say("hi")' --format json
//
//	# Check every .tag file under a directory
//	tag check --dir tags/
//
//	# Store and compile snippets
//	tag snippet put greet --file greet.tag --owner alice
//	tag snippet get greet --ast
//
//	# Start the HTTP API
//	tag serve --config config.yaml
package main

func main() {
	Execute()
}
