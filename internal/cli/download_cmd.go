// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

const downloadUsage = "citechat download NAME... [--dir DIR]"

// HandleDownload handles "citechat download". Every name is attempted; the
// returned error combines the failures.
func HandleDownload(ctx context.Context, args Args) error {
	if len(args.Names) == 0 {
		return &UsageError{Usage: downloadUsage}
	}

	env, err := NewEnv(args)
	if err != nil {
		return err
	}

	results, fetchErr := env.Downloader.Fetch(ctx, args.Names)

	var failures error
	for _, r := range results {
		if !r.OK() {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", r.FileName, r.Err))
		}
	}
	failures = multierr.Append(failures, fetchErr)

	if args.JSON {
		data := DownloadData{Dir: env.Downloader.Dir(), Files: make([]DownloadedFile, 0, len(results))}
		for _, r := range results {
			f := DownloadedFile{DownloadResult: r}
			if !r.OK() {
				f.Error = r.Problem()
			}
			data.Files = append(data.Files, f)
		}
		resp := NewJSONResponse("download", data)
		if failures != nil {
			msg := failures.Error()
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Print(); err != nil {
			return err
		}
	} else {
		printDownloadResults(results)
	}

	if failures == nil {
		return nil
	}
	failed := len(multierr.Errors(failures))
	return fmt.Errorf("%d of %d downloads failed: %w", failed, len(args.Names), failures)
}
