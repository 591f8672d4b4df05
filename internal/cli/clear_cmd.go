// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/citechat/internal/ui/styles"
)

// HandleClear handles "citechat clear": ask the server to forget the chat.
func HandleClear(ctx context.Context, args Args) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	if err := env.Client.Clear(ctx); err != nil {
		return connectionFailure(err)
	}
	if !args.Quiet {
		fmt.Fprintln(stdout, styles.RenderSuccess("Server chat history cleared."))
	}
	return nil
}
