//go:build tools

package tools

import (
	_ "github.com/golang/mock/mockgen"
	_ "github.com/google/trillian/cmd/createtree"
	_ "github.com/google/trillian/cmd/deletetree"
	_ "github.com/google/trillian/cmd/trillian_log_server"
	_ "github.com/google/trillian/cmd/trillian_log_signer"
	_ "github.com/google/trillian/cmd/updatetree"
)
