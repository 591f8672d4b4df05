// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

const askUsage = `citechat ask "question" [--json]`

// HandleAsk handles "citechat ask": one round trip with an empty history.
// With no question on the command line, piped stdin is used.
func HandleAsk(ctx context.Context, args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" && !IsTTY() {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read question from stdin: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if err := requireArg(query, askUsage); err != nil {
		return err
	}

	env, err := NewEnv(args)
	if err != nil {
		return err
	}

	raw, err := env.Client.Send(ctx, query, nil)
	if err != nil {
		err = connectionFailure(err)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	reply := env.Parser.Parse(raw)

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Question:     query,
			Response:     raw,
			Parsed:       reply,
			DownloadURLs: downloadURLs(env.Config.Server.URL, reply),
		}).Print()
	}

	printReply(env, reply)
	return nil
}

// printReply writes a rendered reply followed by a blank line.
func printReply(env *Env, reply annotate.ParsedReply) {
	if reply.Mode == annotate.ModeEmpty {
		fmt.Fprintln(stdout, styles.StatusIndicators.Info+" The server sent an empty reply.")
		return
	}
	fmt.Fprintln(stdout, env.Renderer.Render(reply))
}
