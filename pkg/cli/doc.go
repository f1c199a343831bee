/*
Package cli provides command-line interface utilities for the screen-memory
evidence engine.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the screenrecalld command.

Output Formatting:

The cli package formats command results as text or JSON. A CSV formatter
exists but writes no data rows: its Format and FormatTo return an error
(FormatTo after writing any header row).

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Progress Reporting:

For long-running operations, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
