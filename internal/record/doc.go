// Package record assembles the configuration record handed to the hosting
// framework and renders it as JSON, YAML or injectable head markup.
package record
