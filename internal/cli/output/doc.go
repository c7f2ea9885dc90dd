// Package output renders command results for the shmap CLI as a table,
// JSON or YAML.
package output
