// Package schema provides the embedded markdown tree JSON schema.
package schema

import _ "embed"

// MdastSchema is the JSON schema for a markdown tree document.
//
//go:embed mdast.schema.json
var MdastSchema []byte
