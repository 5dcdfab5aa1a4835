// Package web carries the wall page shipped inside the server binary.
package web

import (
	_ "embed"
)

//go:embed index.html
var Index []byte
