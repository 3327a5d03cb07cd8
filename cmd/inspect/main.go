// Command inspect prints the transfer journal of a relay database.
package main

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to the relay journal (BADGER_FILEPATH)")
	limit := flag.Int("limit", 50, "Maximum number of transfers, 0 for all")
	flag.Parse()

	if err := run(*dbPath, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, limit int) error {
	if dbPath == "" {
		return errors.ErrNoJournalPath
	}
	// BypassLockGuard allows reading while the relay holds the lock
	db, err := badger.Open(badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	records, err := repositories.NewTransferRepository(db, logs.GetLoggerFromString("WARN")).List(limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Status", "Room", "User", "File", "Bytes", "Mime", "Digest"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, r := range records {
		table.Append(row(r))
	}
	table.Render()
	return nil
}

func row(r domain.TransferRecord) []string {
	status := color.FgGreen.Render(string(r.Status))
	if r.Status == domain.TransferFailed {
		status = color.FgRed.Render(string(r.Status))
	}
	// First 12 hex characters are enough to tell digests apart on screen
	digest := r.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return []string{
		r.At.Local().Format("2006-01-02 15:04:05"),
		status,
		string(r.Room),
		r.Username,
		r.FileName,
		strconv.FormatUint(r.Received, 10) + "/" + strconv.FormatUint(r.Announced, 10),
		r.MimeType,
		digest,
	}
}
